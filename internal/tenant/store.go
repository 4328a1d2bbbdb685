package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultLoadTimeout     = 5 * time.Second
	defaultCacheExpiration = 5 * time.Minute
	defaultCacheCleanup    = 10 * time.Minute
)

// Store mediates between the durable tenant configuration repository and a
// fast in-process cache. Reads go through the cache; writes hit the durable
// store first and refresh the cache only after the write succeeds, so the
// cache never serves data that is not actually durable. Last write wins; no
// versioning.
type Store struct {
	repo        repository.TenantConfigRepository
	cache       *gocache.Cache
	logger      *zap.Logger
	loadTimeout time.Duration
}

func NewStore(repo repository.TenantConfigRepository, loadTimeout time.Duration, logger *zap.Logger) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenant config repository is required")
	}
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		repo:        repo,
		cache:       gocache.New(defaultCacheExpiration, defaultCacheCleanup),
		logger:      logger,
		loadTimeout: loadTimeout,
	}, nil
}

// Resolve returns the tenant's configuration and whether a stored record
// exists. Absent tenants resolve to the default config with all providers
// disabled, so settings screens degrade instead of erroring; callers that
// must not dispatch without configuration check the found flag.
func (s *Store) Resolve(ctx context.Context, tenantID string) (domain.TenantConfig, bool, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return domain.TenantConfig{}, false, fmt.Errorf("%w: tenant id is required", domain.ErrValidation)
	}

	if cached, ok := s.cache.Get(cacheKey(tenantID)); ok {
		return cached.(domain.TenantConfig), true, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	cfg, err := s.repo.Get(loadCtx, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultTenantConfig(), false, nil
	}
	if err != nil {
		return domain.TenantConfig{}, false, fmt.Errorf("failed to load config for tenant %q: %w", tenantID, err)
	}

	s.cache.Set(cacheKey(tenantID), *cfg, gocache.DefaultExpiration)
	return *cfg, true, nil
}

// Update writes the configuration durably and then refreshes the cache.
func (s *Store) Update(ctx context.Context, tenantID string, cfg domain.TenantConfig) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", domain.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	if err := s.repo.Upsert(writeCtx, tenantID, cfg); err != nil {
		return fmt.Errorf("failed to persist config for tenant %q: %w", tenantID, err)
	}

	s.cache.Set(cacheKey(tenantID), cfg, gocache.DefaultExpiration)
	s.logger.Info("tenant notification config updated",
		zap.String("tenantId", tenantID),
		zap.String("smsProvider", cfg.SMSProvider.String()),
		zap.String("whatsappProvider", cfg.WhatsAppProvider.String()),
	)
	return nil
}

// Invalidate drops the cached entry for a tenant.
func (s *Store) Invalidate(tenantID string) {
	s.cache.Delete(cacheKey(strings.TrimSpace(tenantID)))
}

func cacheKey(tenantID string) string {
	return "tenantconfig:" + tenantID
}
