// Package schemas holds the JSON Schemas for the files the admin reads.
package schemas

import _ "embed"

// Content is the schema for the Content Document (content.json).
//
//go:embed content.schema.json
var Content string

// Admins is the schema for the admin credentials file (admins.json).
//
//go:embed admins.schema.json
var Admins string
