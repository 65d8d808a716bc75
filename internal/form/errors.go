package form

import "fmt"

// PathError reports an update aimed at a field the document does not have.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("form path %q: %s", e.Path, e.Reason)
}

// UpdateError reports an update that cannot be applied as given.
type UpdateError struct {
	Op      Op
	Message string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("form update %s: %s", e.Op, e.Message)
}
