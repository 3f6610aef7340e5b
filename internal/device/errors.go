package device

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to a response without
// inspecting message strings.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindHardware
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindHardware:
		return "hardware"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the device, store and relay layers.
type Error struct {
	Kind  Kind
	Op    string // operation that failed, e.g. "create"
	Field string // offending field for validation errors
	Value any    // offending value
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports an invalid input value.
func Validation(field string, value any, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Value: value, Msg: msg}
}

// NotFound reports an unknown device identifier.
func NotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Field: "id", Value: id, Msg: "Device not found"}
}

// Hardware reports a relay actuation failure on the given port.
func Hardware(port int, err error) *Error {
	return &Error{Kind: KindHardware, Field: "relay_port", Value: port, Msg: "relay actuation failed", Err: err}
}

// Storage wraps an unexpected persistence failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
