package service

import "fmt"

// Kind categorizes a failed gateway call.
type Kind int

const (
	// KindNetwork is a connectivity or transport failure.
	KindNetwork Kind = iota + 1
	// KindStatus is a non-2xx response from the service.
	KindStatus
	// KindHTTP is a protocol-level failure: unbuildable request or undecodable response.
	KindHTTP
	// KindApplication is a well-formed response that cannot satisfy the call.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Failure is the reason a gateway call did not succeed.
type Failure struct {
	Kind    Kind
	Op      string // e.g. "fetching tasks"
	Message string // human-readable, shown to the user
	Err     error  // underlying cause, may be nil
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// NetworkFailure reports a connectivity failure during op.
func NetworkFailure(op string, err error) *Failure {
	return &Failure{Kind: KindNetwork, Op: op, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

// StatusFailure reports a non-2xx response; statusText is the response reason phrase.
func StatusFailure(op, statusText string, err error) *Failure {
	return &Failure{Kind: KindStatus, Op: op, Message: fmt.Sprintf("error %s: %s", op, statusText), Err: err}
}

// HTTPFailure reports a protocol-level failure during op.
func HTTPFailure(op string, err error) *Failure {
	return &Failure{Kind: KindHTTP, Op: op, Message: fmt.Sprintf("http error: %v", err), Err: err}
}

// EmptyTaskFailure reports a success response without the expected task body.
func EmptyTaskFailure(op string) *Failure {
	return &Failure{Kind: KindApplication, Op: op, Message: "empty task response"}
}

// Outcome is the result of a gateway call: a value or a failure, never both.
type Outcome[T any] struct {
	value   T
	failure *Failure
}

// Succeed wraps a success value.
func Succeed[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Fail wraps a failure. A nil failure is replaced with a generic application failure.
func Fail[T any](f *Failure) Outcome[T] {
	if f == nil {
		f = &Failure{Kind: KindApplication, Message: "unknown failure"}
	}
	return Outcome[T]{failure: f}
}

// Failed reports whether the call failed.
func (o Outcome[T]) Failed() bool { return o.failure != nil }

// Get returns the value, or the zero value and the *Failure.
func (o Outcome[T]) Get() (T, error) {
	if o.failure != nil {
		var zero T
		return zero, o.failure
	}
	return o.value, nil
}

// Failure returns the failure, or nil on success.
func (o Outcome[T]) Failure() *Failure { return o.failure }

// Reason returns the failure message, or "" on success.
func (o Outcome[T]) Reason() string {
	if o.failure == nil {
		return ""
	}
	return o.failure.Message
}
