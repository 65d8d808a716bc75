package types

// AdminList is the shape of admins.json.
type AdminList struct {
	Users []AdminUser `json:"users"`
}

// AdminUser is one admin credential. PasswordHash, when set, is a bcrypt hash
// checked instead of the plaintext Password.
type AdminUser struct {
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}
