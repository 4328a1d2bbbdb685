package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/observability"
	"github.com/storesense/notify-core/internal/provider"
)

// TenantConfigStore reads and writes per-tenant notification settings.
type TenantConfigStore interface {
	Resolve(ctx context.Context, tenantID string) (domain.TenantConfig, bool, error)
	Update(ctx context.Context, tenantID string, cfg domain.TenantConfig) error
}

type TenantHandler struct {
	configs   TenantConfigStore
	providers *provider.Registry
}

func NewTenantHandler(configs TenantConfigStore, providers *provider.Registry) (*TenantHandler, error) {
	if configs == nil {
		return nil, fmt.Errorf("tenant config store is required")
	}
	if providers == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	return &TenantHandler{configs: configs, providers: providers}, nil
}

func RegisterTenantRoutes(router fiber.Router, configs TenantConfigStore, providers *provider.Registry) error {
	h, err := NewTenantHandler(configs, providers)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/tenants/:tenantId/notification-config", h.GetConfig)
	v1.Put("/tenants/:tenantId/notification-config", h.PutConfig)
	v1.Get("/tenants/:tenantId/sms/balance", h.GetSMSBalance)

	return nil
}

type tenantConfigResponse struct {
	TenantID string              `json:"tenantId"`
	Stored   bool                `json:"stored"`
	Config   domain.TenantConfig `json:"config"`
}

func (h *TenantHandler) GetConfig(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("tenantId"))
	ctx := observability.WithTenantID(c.UserContext(), tenantID)

	cfg, found, err := h.configs.Resolve(ctx, tenantID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(tenantConfigResponse{
		TenantID: tenantID,
		Stored:   found,
		Config:   cfg,
	})
}

func (h *TenantHandler) PutConfig(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("tenantId"))

	var cfg domain.TenantConfig
	if err := c.BodyParser(&cfg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := observability.WithTenantID(c.UserContext(), tenantID)
	if err := h.configs.Update(ctx, tenantID, cfg); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(tenantConfigResponse{
		TenantID: tenantID,
		Stored:   true,
		Config:   cfg,
	})
}

type balanceResponse struct {
	Provider string  `json:"provider"`
	Balance  float64 `json:"balance"`
}

// GetSMSBalance queries the remaining credit on the tenant's SMS provider
// account. Providers with no balance endpoint answer with a zero balance.
func (h *TenantHandler) GetSMSBalance(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("tenantId"))
	ctx := observability.WithTenantID(c.UserContext(), tenantID)

	cfg, found, err := h.configs.Resolve(ctx, tenantID)
	if err != nil {
		return toHTTPError(err)
	}
	if !found || cfg.SMSProvider == domain.ProviderNone {
		return toHTTPError(fmt.Errorf("%w: no sms provider configured for tenant %q", domain.ErrValidation, tenantID))
	}

	// Providers without a balance endpoint report zero rather than erroring.
	checker, ok := h.providers.BalanceCheckerFor(cfg.SMSProvider)
	if !ok {
		return c.Status(fiber.StatusOK).JSON(balanceResponse{
			Provider: cfg.SMSProvider.String(),
			Balance:  0,
		})
	}

	balance, err := checker.Balance(ctx, cfg.CredentialsFor(cfg.SMSProvider))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(balanceResponse{
		Provider: cfg.SMSProvider.String(),
		Balance:  balance,
	})
}
