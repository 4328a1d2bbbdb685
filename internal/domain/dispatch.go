package domain

import (
	"fmt"
	"strings"
)

// Channel represents a delivery medium for a message.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// Audience represents who a message is directed at. The notification policy
// is keyed by audience, so an owner alert and a customer receipt can be
// enabled independently per channel.
type Audience string

const (
	AudienceOwner    Audience = "owner"
	AudienceCustomer Audience = "customer"
)

func (a Audience) String() string { return string(a) }

func (a Audience) IsValid() bool {
	switch a {
	case AudienceOwner, AudienceCustomer:
		return true
	}
	return false
}

func ParseAudienceFromString(s string) (Audience, error) {
	a := Audience(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: invalid audience %q", ErrValidation, s)
	}
	return a, nil
}

// DispatchRequest is one request to deliver a message over a set of channels.
type DispatchRequest struct {
	TenantID string
	Phone    string
	Message  string
	Channels []Channel
	Audience Audience

	// Config, when set, overrides the stored tenant configuration for this
	// call. Used by callers that carry their own settings, e.g. a config
	// test screen.
	Config *TenantConfig
}

func (r *DispatchRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is required", ErrValidation)
	}
	if strings.TrimSpace(r.TenantID) == "" {
		return fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len(r.Channels) == 0 {
		return fmt.Errorf("%w: at least one channel is required", ErrValidation)
	}
	for _, ch := range r.Channels {
		if !ch.IsValid() {
			return fmt.Errorf("%w: invalid channel %q", ErrValidation, ch)
		}
	}
	if r.Audience != "" && !r.Audience.IsValid() {
		return fmt.Errorf("%w: invalid audience %q", ErrValidation, r.Audience)
	}
	return nil
}

// ChannelOutcome is the result of one channel attempt within a dispatch.
type ChannelOutcome struct {
	Attempted bool
	Sent      bool
	Reason    string
}

// DispatchOutcome aggregates per-channel results. Overall success is the
// logical OR across attempted channels: any channel getting the message
// through marks the whole call successful.
type DispatchOutcome struct {
	Success  bool
	Reason   string
	Channels map[Channel]ChannelOutcome
}

// RepresentativeChannel picks the single channel recorded in the audit
// trail: the channel actually used, preferring sms over whatsapp when both
// were attempted. When nothing was attempted at all it falls back to the
// requested channels, with the same preference.
func (o DispatchOutcome) RepresentativeChannel() Channel {
	for _, ch := range []Channel{ChannelSMS, ChannelWhatsApp} {
		if result, ok := o.Channels[ch]; ok && result.Attempted {
			return ch
		}
	}
	for _, ch := range []Channel{ChannelSMS, ChannelWhatsApp} {
		if _, ok := o.Channels[ch]; ok {
			return ch
		}
	}
	return ChannelSMS
}
