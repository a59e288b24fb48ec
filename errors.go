package dashactyl

import "fmt"

// Error kinds used to classify failures. Callers branch on these via
// errors.Is / errors.As or the Is* helpers below.
const (
	// KindValidation marks a locally rejected call (out-of-bound amount,
	// missing required parameter). No network traffic was generated.
	KindValidation = "Validation"

	// KindRemote marks a failure reported by the panel: a non-2xx status
	// or a 2xx response carrying a failed envelope. StatusCode and
	// Message hold the panel's own diagnosis.
	KindRemote = "Remote"

	// KindMalformed marks a response missing structure the panel contract
	// promises (e.g. relationship data absent from a user payload).
	KindMalformed = "Malformed"

	// KindUnsupported marks an operation the panel does not implement yet
	// (single-coupon fetch, resource adjustments).
	KindUnsupported = "Unsupported"

	// KindNotFound marks a lookup that matched nothing the client is
	// allowed to resolve remotely (opaque key miss with no fetch path).
	KindNotFound = "NotFound"

	// KindNetwork marks a transport-level failure: dial errors, timeouts,
	// context cancellation. The cause is wrapped.
	KindNetwork = "Network"
)

// Error is the single error type returned by this library. Remote failures
// are values, not panics: mutation methods never touch cached state when
// returning one.
type Error struct {
	Kind       string
	Op         string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("dashactyl: %s: %s", e.Kind, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("dashactyl: %s: %s: %s", e.Kind, e.Op, e.Message)
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsRemote reports whether err is a failure reported by the panel.
func IsRemote(err error) bool { return hasKind(err, KindRemote) }

// IsMalformed reports whether err is a response-structure mismatch.
func IsMalformed(err error) bool { return hasKind(err, KindMalformed) }

// IsUnsupported reports whether err marks an endpoint the panel lacks.
func IsUnsupported(err error) bool { return hasKind(err, KindUnsupported) }

// IsNotFound reports whether err is an unresolvable lookup.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

func hasKind(err error, kind string) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

func errValidation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func errRemote(op string, status int, message string) *Error {
	return &Error{Kind: KindRemote, Op: op, StatusCode: status, Message: message}
}

func errMalformed(op, message string) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: message}
}

func errUnsupported(op string) *Error {
	return &Error{Kind: KindUnsupported, Op: op, Message: "not implemented by the panel"}
}

func errNotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func errNetwork(op string, cause error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: "request failed", Cause: cause}
}
