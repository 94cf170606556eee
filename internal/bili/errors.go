package bili

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies failures of platform calls.
type ErrorKind int

const (
	// KindTransport covers network failures and unreadable bodies.
	KindTransport ErrorKind = iota
	// KindStatus is a non-2xx HTTP status.
	KindStatus
	// KindShape is a response that does not match the endpoint schema.
	KindShape
	// KindAPI is a well-formed response with a non-zero platform code
	// (expired cookie, missing video, risk control).
	KindAPI
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindShape:
		return "unexpected response shape"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// ErrUnsupportedValue is returned when a query parameter cannot be stringified.
var ErrUnsupportedValue = errors.New("unsupported parameter value")

// Error is returned by every Client call.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Code       int
	Message    string
	Raw        json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: http status %d", e.Op, e.StatusCode)
	case KindAPI:
		return fmt.Sprintf("%s: api code %d: %s", e.Op, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}

func shapeError(op string, raw []byte, format string, args ...any) *Error {
	return &Error{Op: op, Kind: KindShape, Raw: raw, Err: fmt.Errorf(format, args...)}
}
