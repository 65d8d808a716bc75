package publish

import "fmt"

// Error is returned for every failed publish: the endpoint was unreachable,
// answered with a non-2xx status, sent an undecodable body or reported
// ok:false.
type Error struct {
	Endpoint string
	Message  string
	Status   int
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("publish to %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("publish to %s: %s", e.Endpoint, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Reason is the failure as shown after "Error:" in the user message.
func (e *Error) Reason() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// UserMessage is the text shown to the editor when publishing fails.
func (e *Error) UserMessage() string {
	return fmt.Sprintf("Could not publish. Make sure the publisher is running at %s. Error: %s", e.Endpoint, e.Reason())
}
