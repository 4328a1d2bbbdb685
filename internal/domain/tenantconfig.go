package domain

import (
	"fmt"
	"strings"
)

// ProviderKind identifies one third-party messaging gateway.
type ProviderKind string

const (
	ProviderNone         ProviderKind = ""
	ProviderHubtel       ProviderKind = "hubtel"
	ProviderMNotify      ProviderKind = "mnotify"
	ProviderMetaWhatsApp ProviderKind = "meta_whatsapp"
)

func (p ProviderKind) String() string { return string(p) }

func (p ProviderKind) IsValid() bool {
	switch p {
	case ProviderHubtel, ProviderMNotify, ProviderMetaWhatsApp:
		return true
	}
	return false
}

func ParseProviderKindFromString(s string) (ProviderKind, error) {
	p := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	if p == ProviderNone {
		return ProviderNone, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid provider %q", ErrValidation, s)
	}
	return p, nil
}

// Credentials is the opaque credential bundle for one provider. Each provider
// kind requires a different subset of fields; the adapter for that kind
// decides which fields are mandatory.
type Credentials struct {
	ClientID      string `json:"clientId,omitempty"`
	ClientSecret  string `json:"clientSecret,omitempty"`
	APIKey        string `json:"apiKey,omitempty"`
	SenderID      string `json:"senderId,omitempty"`
	AccessToken   string `json:"accessToken,omitempty"`
	PhoneNumberID string `json:"phoneNumberId,omitempty"`
}

// IsZero reports whether no credential field is set at all.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// ChannelPolicy is the per-channel enablement for one audience.
type ChannelPolicy struct {
	SMS      bool `json:"sms"`
	WhatsApp bool `json:"whatsapp"`
}

// NotificationPolicy is per-audience, per-channel enablement.
type NotificationPolicy struct {
	Owner    ChannelPolicy `json:"owner"`
	Customer ChannelPolicy `json:"customer"`
}

// Enabled reports whether the given audience/channel pair is switched on.
func (p NotificationPolicy) Enabled(audience Audience, channel Channel) bool {
	var cp ChannelPolicy
	switch audience {
	case AudienceOwner:
		cp = p.Owner
	default:
		cp = p.Customer
	}

	switch channel {
	case ChannelSMS:
		return cp.SMS
	case ChannelWhatsApp:
		return cp.WhatsApp
	}
	return false
}

// TemplateKind identifies a tenant message template.
type TemplateKind string

const (
	TemplateWelcome TemplateKind = "welcome"
	TemplateReceipt TemplateKind = "receipt"
)

func (t TemplateKind) IsValid() bool {
	switch t {
	case TemplateWelcome, TemplateReceipt:
		return true
	}
	return false
}

func ParseTemplateKindFromString(s string) (TemplateKind, error) {
	t := TemplateKind(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid template kind %q", ErrValidation, s)
	}
	return t, nil
}

// TenantConfig holds one tenant's provider selection, credentials, policy,
// and message templates. The SMS and WhatsApp provider choices are
// independent axes; both channels may fire on the same dispatch.
type TenantConfig struct {
	SMSProvider      ProviderKind                 `json:"smsProvider"`
	WhatsAppProvider ProviderKind                 `json:"whatsappProvider"`
	Credentials      map[ProviderKind]Credentials `json:"credentials"`
	Policy           NotificationPolicy           `json:"policy"`
	Templates        map[TemplateKind]string      `json:"templates"`
}

// DefaultTenantConfig is what a tenant with no stored record resolves to:
// everything disabled, so dispatch degrades instead of panicking.
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SMSProvider:      ProviderNone,
		WhatsAppProvider: ProviderNone,
		Credentials:      map[ProviderKind]Credentials{},
		Templates: map[TemplateKind]string{
			TemplateWelcome: "Welcome {Name}! Thanks for shopping with us.",
			TemplateReceipt: "Hi {Name}, your payment of {Amount} has been received.",
		},
	}
}

// ProviderFor returns the configured provider for a channel.
func (c TenantConfig) ProviderFor(channel Channel) ProviderKind {
	switch channel {
	case ChannelSMS:
		return c.SMSProvider
	case ChannelWhatsApp:
		return c.WhatsAppProvider
	}
	return ProviderNone
}

// CredentialsFor returns the credential bundle stored for a provider kind.
func (c TenantConfig) CredentialsFor(kind ProviderKind) Credentials {
	if c.Credentials == nil {
		return Credentials{}
	}
	return c.Credentials[kind]
}

// Template returns the tenant's template for a kind, falling back to the
// default wording when the tenant did not customize it.
func (c TenantConfig) Template(kind TemplateKind) string {
	if tpl, ok := c.Templates[kind]; ok && strings.TrimSpace(tpl) != "" {
		return tpl
	}
	return DefaultTenantConfig().Templates[kind]
}

func (c *TenantConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is required", ErrValidation)
	}
	if c.SMSProvider != ProviderNone && c.SMSProvider != ProviderHubtel && c.SMSProvider != ProviderMNotify {
		return fmt.Errorf("%w: %q is not an sms provider", ErrValidation, c.SMSProvider)
	}
	if c.WhatsAppProvider != ProviderNone && c.WhatsAppProvider != ProviderMetaWhatsApp {
		return fmt.Errorf("%w: %q is not a whatsapp provider", ErrValidation, c.WhatsAppProvider)
	}
	for kind := range c.Templates {
		if !kind.IsValid() {
			return fmt.Errorf("%w: invalid template kind %q", ErrValidation, kind)
		}
	}
	return nil
}
