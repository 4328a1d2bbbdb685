package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/observability"
	"github.com/storesense/notify-core/internal/phone"
	"github.com/storesense/notify-core/internal/provider"
	"github.com/storesense/notify-core/internal/ratelimit"
	"github.com/storesense/notify-core/internal/template"
)

const (
	reasonChannelDisabled  = "channel disabled by notification policy"
	reasonNoProvider       = "no provider configured for channel"
	reasonRateLimited      = "tenant rate limit exceeded"
	reasonNothingAttempted = "no channel was attempted"
)

// ConfigResolver loads the stored notification settings for a tenant. The
// second return reports whether a stored config exists; callers decide what
// absence means.
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantID string) (domain.TenantConfig, bool, error)
}

// AuditRecorder persists a delivery record on a best effort basis. It never
// reports failure to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, record domain.MessageLog)
}

// Orchestrator runs one dispatch end to end: validate, normalize the
// recipient, resolve tenant settings, fan the message out over the requested
// channels, and write the audit record.
type Orchestrator struct {
	normalizer  phone.Normalizer
	providers   *provider.Registry
	configs     ConfigResolver
	audit       AuditRecorder
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewOrchestrator(
	normalizer phone.Normalizer,
	providers *provider.Registry,
	configs ConfigResolver,
	audit AuditRecorder,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if normalizer == nil {
		return nil, fmt.Errorf("phone normalizer is required")
	}
	if providers == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if configs == nil {
		return nil, fmt.Errorf("config resolver is required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		normalizer: normalizer,
		providers:  providers,
		configs:    configs,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SetRateLimiter enables per-tenant flood control. Without one every
// dispatch is allowed through.
func (o *Orchestrator) SetRateLimiter(limiter ratelimit.RateLimiter) {
	if o == nil {
		return
	}
	o.rateLimiter = limiter
}

func (o *Orchestrator) SetMetrics(metrics *observability.Metrics) {
	if o == nil {
		return
	}
	o.metrics = metrics
}

// Dispatch delivers one message over the requested channels. Channels run
// concurrently and independently; the call succeeds when at least one
// channel gets the message through. A failed or slow audit write never
// fails the dispatch.
func (o *Orchestrator) Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.DispatchOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := req.Validate(); err != nil {
		return domain.DispatchOutcome{}, err
	}

	cfg, err := o.resolveConfig(ctx, req.TenantID, req.Config)
	if err != nil {
		return domain.DispatchOutcome{}, err
	}

	to := o.normalizer.Normalize(req.Phone)
	channels := dedupeChannels(req.Channels)
	logger := observability.WithContextLogger(o.logger, ctx).With(
		zap.String("tenantId", req.TenantID),
	)

	results := make([]domain.ChannelOutcome, len(channels))
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		g.Go(func() error {
			result := o.dispatchChannel(groupCtx, cfg, ch, req, to, logger)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	outcome := domain.DispatchOutcome{
		Channels: make(map[domain.Channel]domain.ChannelOutcome, len(channels)),
	}
	for i, ch := range channels {
		outcome.Channels[ch] = results[i]
		if results[i].Sent {
			outcome.Success = true
		}
	}
	if !outcome.Success {
		outcome.Reason = failureReason(outcome)
	}

	o.recordAudit(ctx, req.TenantID, to, req.Message, outcome)

	return outcome, nil
}

// TemplateRequest delivers one of the tenant's stored message templates.
type TemplateRequest struct {
	TenantID string
	Phone    string
	Template domain.TemplateKind
	Data     map[string]string
	Channels []domain.Channel
	Audience domain.Audience
}

// DispatchTemplate renders the tenant's template for the given kind and
// dispatches the result. The stored config is resolved once and reused for
// both the template text and the channel fan-out.
func (o *Orchestrator) DispatchTemplate(ctx context.Context, req TemplateRequest) (domain.DispatchOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !req.Template.IsValid() {
		return domain.DispatchOutcome{}, fmt.Errorf("%w: invalid template kind %q", domain.ErrValidation, req.Template)
	}

	cfg, err := o.resolveConfig(ctx, req.TenantID, nil)
	if err != nil {
		return domain.DispatchOutcome{}, err
	}

	message := template.Render(cfg.Template(req.Template), req.Data)

	return o.Dispatch(ctx, domain.DispatchRequest{
		TenantID: req.TenantID,
		Phone:    req.Phone,
		Message:  message,
		Channels: req.Channels,
		Audience: req.Audience,
		Config:   &cfg,
	})
}

func (o *Orchestrator) resolveConfig(
	ctx context.Context,
	tenantID string,
	override *domain.TenantConfig,
) (domain.TenantConfig, error) {
	if override != nil {
		cfg := *override
		if err := cfg.Validate(); err != nil {
			return domain.TenantConfig{}, err
		}
		return cfg, nil
	}

	cfg, found, err := o.configs.Resolve(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return domain.TenantConfig{}, fmt.Errorf("failed to resolve tenant config: %w", err)
	}
	if !found {
		return domain.TenantConfig{}, fmt.Errorf("%w: no notification config for tenant %q", domain.ErrConfigUnresolvable, tenantID)
	}
	return cfg, nil
}

func (o *Orchestrator) dispatchChannel(
	ctx context.Context,
	cfg domain.TenantConfig,
	channel domain.Channel,
	req domain.DispatchRequest,
	to string,
	logger *zap.Logger,
) domain.ChannelOutcome {
	channelName := channel.String()

	if !cfg.Policy.Enabled(req.Audience, channel) {
		o.countDispatch(channelName, "skipped")
		return domain.ChannelOutcome{Reason: reasonChannelDisabled}
	}

	kind := cfg.ProviderFor(channel)
	if kind == domain.ProviderNone {
		o.countDispatch(channelName, "skipped")
		return domain.ChannelOutcome{Reason: reasonNoProvider}
	}

	if o.rateLimiter != nil {
		allowed, err := o.rateLimiter.Allow(ctx, req.TenantID, channelName)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing dispatch",
				zap.String("channel", channelName),
				zap.Error(err),
			)
		} else if !allowed {
			if o.metrics != nil {
				o.metrics.IncRateLimited(channelName)
			}
			o.countDispatch(channelName, "rate_limited")
			return domain.ChannelOutcome{Reason: reasonRateLimited}
		}
	}

	adapter, ok := o.providers.Get(kind)
	if !ok {
		logger.Error("configured provider has no adapter",
			zap.String("channel", channelName),
			zap.String("provider", kind.String()),
		)
		o.countDispatch(channelName, "failed")
		return domain.ChannelOutcome{
			Attempted: true,
			Reason:    fmt.Sprintf("provider %q is not available", kind),
		}
	}

	creds := cfg.CredentialsFor(kind)

	sendStart := o.now()
	sendErr := adapter.Send(ctx, creds, to, req.Message)
	if o.metrics != nil {
		o.metrics.ObserveProviderSendDuration(kind.String(), o.now().Sub(sendStart))
	}

	if sendErr != nil {
		logger.Warn("channel send failed",
			zap.String("channel", channelName),
			zap.String("provider", kind.String()),
			zap.Error(sendErr),
		)
		o.countDispatch(channelName, "failed")
		return domain.ChannelOutcome{Attempted: true, Reason: sendErr.Error()}
	}

	logger.Info("channel send succeeded",
		zap.String("channel", channelName),
		zap.String("provider", kind.String()),
	)
	o.countDispatch(channelName, "sent")
	return domain.ChannelOutcome{Attempted: true, Sent: true}
}

func (o *Orchestrator) recordAudit(
	ctx context.Context,
	tenantID string,
	to string,
	message string,
	outcome domain.DispatchOutcome,
) {
	status := domain.LogStatusFailed
	if outcome.Success {
		status = domain.LogStatusSent
	}

	o.audit.Record(ctx, domain.MessageLog{
		TenantID: tenantID,
		Phone:    to,
		Message:  message,
		Channel:  outcome.RepresentativeChannel(),
		Status:   status,
	})
}

func (o *Orchestrator) countDispatch(channel string, result string) {
	if o.metrics == nil {
		return
	}
	o.metrics.IncDispatch(channel, result)
}

func failureReason(outcome domain.DispatchOutcome) string {
	rep := outcome.RepresentativeChannel()
	if result, ok := outcome.Channels[rep]; ok && result.Reason != "" {
		return result.Reason
	}
	for _, result := range outcome.Channels {
		if result.Reason != "" {
			return result.Reason
		}
	}
	return reasonNothingAttempted
}

func dedupeChannels(channels []domain.Channel) []domain.Channel {
	seen := make(map[domain.Channel]struct{}, len(channels))
	out := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
