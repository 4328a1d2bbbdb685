package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a send failure for the orchestrator and callers.
type ErrorKind string

const (
	// KindMissingCredentials means required credential fields were absent;
	// no network attempt was made. A configuration problem, not transient.
	KindMissingCredentials ErrorKind = "missing_credentials"
	// KindRejected means the provider was reached but declined the message.
	KindRejected ErrorKind = "rejected"
	// KindTransport means the provider could not be reached or its response
	// could not be parsed. Callers treat it the same as a rejection.
	KindTransport ErrorKind = "transport"
)

// SendError carries provider diagnostic detail alongside the classification.
// StatusCode is the HTTP status; Code and Detail are the provider's own
// business-level status signal, which several providers return inside an
// HTTP 200.
type SendError struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Detail     string
	Cause      error
}

func (e *SendError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 5)
	parts = append(parts, fmt.Sprintf("provider error (%s)", e.Kind))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if code := strings.TrimSpace(e.Code); code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", code))
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		parts = append(parts, detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *SendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsMissingCredentials reports whether an error is a credential
// configuration problem rather than a provider-side failure.
func IsMissingCredentials(err error) bool {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind == KindMissingCredentials
	}
	return false
}

func missingCredentials(provider string, fields ...string) *SendError {
	return &SendError{
		Kind:   KindMissingCredentials,
		Detail: fmt.Sprintf("%s credentials incomplete, missing %s", provider, strings.Join(fields, ", ")),
	}
}

func transportFailure(cause error) *SendError {
	return &SendError{
		Kind:   KindTransport,
		Detail: "provider request failed",
		Cause:  cause,
	}
}
