package s3rest

import "fmt"

// A Stage identifies the part of the signing and dispatch pipeline an
// error originated from.
type Stage struct {
	Code string
}

var (
	// InvalidRequestSpec indicates a request that cannot be normalised into
	// a canonical form, such as an unsupported method or an unrepresentable
	// path segment.
	InvalidRequestSpec = Stage{Code: "InvalidRequestSpec"}
	// SigningError indicates incomplete credentials or an invalid set of
	// headers to sign. Signing is deterministic so these are never retried.
	SigningError = Stage{Code: "SigningError"}
	// TransportError indicates a network level failure such as connection
	// refused, timeout or a TLS handshake failure.
	TransportError = Stage{Code: "TransportError"}
	// ProtocolError indicates a malformed HTTP response.
	// The response body may be partially available.
	ProtocolError = Stage{Code: "ProtocolError"}
	// QueryError indicates a syntactically invalid XML path expression.
	// It applies only to the query call and never invalidates the response.
	QueryError = Stage{Code: "QueryError"}
)

type Error struct {
	Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok && t.Stage == e.Stage {
		return true
	}

	return false
}

// ErrorFrom returns err as an *Error, wrapping it under the given stage if
// it is not one already.
func ErrorFrom(stage Stage, err error) *Error {
	switch e := err.(type) {
	case *Error:
		return e
	default:
		return &Error{
			Stage:   stage,
			Message: "request failed",
			Cause:   e,
		}
	}
}
