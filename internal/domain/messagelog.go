package domain

import (
	"fmt"
	"strings"
	"time"
)

// LogStatus is the recorded outcome of a dispatch attempt.
type LogStatus string

const (
	LogStatusSent   LogStatus = "sent"
	LogStatusFailed LogStatus = "failed"
)

func (s LogStatus) String() string { return string(s) }

func (s LogStatus) IsValid() bool {
	switch s {
	case LogStatusSent, LogStatusFailed:
		return true
	}
	return false
}

func ParseLogStatusFromString(s string) (LogStatus, error) {
	st := LogStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// MessageLog is one append-only audit record of a dispatch attempt. Records
// are never updated or deleted by this subsystem.
type MessageLog struct {
	ID        string
	TenantID  string
	Phone     string
	Message   string
	Channel   Channel
	Status    LogStatus
	CreatedAt time.Time
}

func (l *MessageLog) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: message log is required", ErrValidation)
	}
	if strings.TrimSpace(l.TenantID) == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}
	if strings.TrimSpace(l.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if !l.Channel.IsValid() {
		return fmt.Errorf("%w: invalid channel %q", ErrValidation, l.Channel)
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, l.Status)
	}
	return nil
}
