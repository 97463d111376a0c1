package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrNotConfigured is the cause of a Failure from a generator without a key.
var ErrNotConfigured = errors.New("provider not configured")

// FailureKind classifies why a generation attempt failed. Callers treat every
// kind the same way; the kind exists for logs and tests.
type FailureKind string

const (
	KindUnavailable FailureKind = "unavailable"
	KindNetwork     FailureKind = "network"
	KindTimeout     FailureKind = "timeout"
	KindStatus      FailureKind = "status"
	KindMalformed   FailureKind = "malformed"
)

// Failure is the single error type returned by generators.
type Failure struct {
	Provider   string
	Kind       FailureKind
	StatusCode int
	Cause      error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.Provider)
	b.WriteString(": ")
	b.WriteString(string(f.Kind))
	if f.StatusCode > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", f.StatusCode)
	}
	if f.Cause != nil {
		b.WriteString(": ")
		b.WriteString(f.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As.
func (f *Failure) Unwrap() error {
	return f.Cause
}

func notConfigured(provider string) *Failure {
	return &Failure{Provider: provider, Kind: KindUnavailable, Cause: ErrNotConfigured}
}

func malformed(provider string, format string, args ...any) *Failure {
	return &Failure{Provider: provider, Kind: KindMalformed, Cause: fmt.Errorf(format, args...)}
}

func statusFailure(provider string, code int, cause error) *Failure {
	return &Failure{Provider: provider, Kind: KindStatus, StatusCode: code, Cause: cause}
}

// transportFailure classifies an error raised while sending a request or
// reading its response.
func transportFailure(provider string, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Provider: provider, Kind: KindTimeout, Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Provider: provider, Kind: KindTimeout, Cause: err}
	}
	return &Failure{Provider: provider, Kind: KindNetwork, Cause: err}
}

// KindOf returns the FailureKind carried by err, or "" when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
