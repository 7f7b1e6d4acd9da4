package diskpart

import "fmt"

// Error is a stable, machine-readable failure class for disk operations.
// Every failure the package reports carries exactly one of the codes below.
type Error struct {
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithMessage returns a new Error with the same code but a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Details: e.Details}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Details: e.Details}
}

// WithDetails returns a new Error carrying raw output or other free text.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// All failure classes.
var (
	ErrPrivilege         = &Error{Code: "PRIVILEGE_ERROR", Message: "administrator privileges are required"}
	ErrDiskNotFound      = &Error{Code: "DISK_NOT_FOUND"}
	ErrPartitionNotFound = &Error{Code: "PARTITION_NOT_FOUND"}
	ErrCommandExecution  = &Error{Code: "COMMAND_EXECUTION_ERROR"}
	ErrCommandTimeout    = &Error{Code: "COMMAND_TIMEOUT"}
	ErrParse             = &Error{Code: "PARSE_ERROR"}
	ErrInvalidCommand    = &Error{Code: "INVALID_COMMAND"}
	ErrAccessDenied      = &Error{Code: "ACCESS_DENIED"}
)
