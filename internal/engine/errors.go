package engine

import "fmt"

// Error is an engine-reported failure: the runtime rejected the module at
// some stage and supplied a numeric code plus a message.
type Error struct {
	Code    uint32
	Message string
}

// NewError builds an Error, substituting a placeholder when the runtime
// supplied no message.
func NewError(code uint32, message string) *Error {
	if message == "" {
		message = "Unknown error"
	}
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// ResourceError reports that the runtime handed back a nil handle from a
// create call. It is a distinct failure class from an engine-reported
// result: there is no code, and the message names the missing resource.
type ResourceError struct {
	Resource string
}

func (e *ResourceError) Error() string {
	return "Failed to create " + e.Resource
}
