package prediction

import (
	"errors"
	"strings"
)

// Kind classifies a prediction failure.
type Kind int

const (
	// KindInternal covers any failure while estimating.
	KindInternal Kind = iota
	// KindBadRequest means the body was empty, unparsable or incomplete.
	KindBadRequest
	// KindUnavailable means the estimator could not be built at start-up.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Messages returned to clients.
const (
	MsgNoData         = "No JSON data provided"
	MsgNotObject      = "JSON body must be an object"
	MsgModelNotLoaded = "Model not loaded. Please check server logs."
)

// ErrModelUnavailable is matched by every KindUnavailable error.
var ErrModelUnavailable = errors.New("model unavailable")

// Error is a classified prediction failure. Msg is safe to return to the
// client; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Msg     string
	Missing []string
	Err     error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is reports unavailable errors as ErrModelUnavailable.
func (e *Error) Is(target error) bool {
	return target == ErrModelUnavailable && e.Kind == KindUnavailable
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindInternal
}

// MissingFields returns the missing field names carried by err, if any.
func MissingFields(err error) []string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Missing
	}
	return nil
}

func badRequest(msg string, err error) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg, Err: err}
}

func missingFields(names []string) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Msg:     "Missing required fields: " + strings.Join(names, ", "),
		Missing: names,
	}
}

func unavailable(cause error) *Error {
	return &Error{Kind: KindUnavailable, Msg: MsgModelNotLoaded, Err: cause}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "Prediction failed: " + err.Error(), Err: err}
}
