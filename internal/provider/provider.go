package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/storesense/notify-core/internal/domain"
)

// defaultSendTimeout bounds every outbound provider call.
const defaultSendTimeout = 10 * time.Second

// Adapter translates a generic send request into one provider's wire
// protocol and classifies the raw response as success or failure. Adapters
// never retry; a failed attempt is final for that call.
type Adapter interface {
	Kind() domain.ProviderKind
	Channel() domain.Channel
	Send(ctx context.Context, creds domain.Credentials, to, message string) error
}

// BalanceChecker is implemented by adapters whose provider exposes an
// account balance endpoint.
type BalanceChecker interface {
	Balance(ctx context.Context, creds domain.Credentials) (float64, error)
}

// Registry holds the configured adapters keyed by provider kind, so the
// orchestrator selects an adapter from the tenant config enum instead of
// branching on provider names.
type Registry struct {
	adapters map[domain.ProviderKind]Adapter
}

func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[domain.ProviderKind]Adapter, len(adapters))}
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("nil adapter")
		}
		kind := adapter.Kind()
		if _, exists := r.adapters[kind]; exists {
			return nil, fmt.Errorf("duplicate adapter for provider %q", kind)
		}
		r.adapters[kind] = adapter
	}
	return r, nil
}

// Get returns the adapter for a provider kind.
func (r *Registry) Get(kind domain.ProviderKind) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

// BalanceCheckerFor returns the balance capability for a provider kind, when
// the adapter has one.
func (r *Registry) BalanceCheckerFor(kind domain.ProviderKind) (BalanceChecker, bool) {
	adapter, ok := r.Get(kind)
	if !ok {
		return nil, false
	}
	checker, ok := adapter.(BalanceChecker)
	return checker, ok
}

func newClient(client *resty.Client) *resty.Client {
	if client == nil {
		client = resty.New()
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSendTimeout)
	}
	client.SetRetryCount(0)
	return client
}

// redactedURL strips credential material from a URL before it reaches any
// log line. Secrets ride in query strings for some providers.
func redactedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}

	query := u.Query()
	for key := range query {
		switch strings.ToLower(key) {
		case "clientsecret", "clientid", "key", "apikey", "token", "access_token":
			query.Set(key, "REDACTED")
		}
	}
	u.RawQuery = query.Encode()
	return u.String()
}
