package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/storesense/notify-core/internal/dispatch"
	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/observability"
)

// Dispatcher runs one message dispatch across the requested channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.DispatchRequest) (domain.DispatchOutcome, error)
	DispatchTemplate(ctx context.Context, req dispatch.TemplateRequest) (domain.DispatchOutcome, error)
}

type DispatchHandler struct {
	dispatcher Dispatcher
}

func NewDispatchHandler(dispatcher Dispatcher) (*DispatchHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	return &DispatchHandler{dispatcher: dispatcher}, nil
}

func RegisterDispatchRoutes(router fiber.Router, dispatcher Dispatcher) error {
	h, err := NewDispatchHandler(dispatcher)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/dispatch", h.Dispatch)
	v1.Post("/dispatch/template", h.DispatchTemplate)

	return nil
}

type dispatchRequest struct {
	TenantID string   `json:"tenantId"`
	Phone    string   `json:"phone"`
	Message  string   `json:"message"`
	Channels []string `json:"channels"`
	Audience string   `json:"audience"`
}

type templateDispatchRequest struct {
	TenantID string            `json:"tenantId"`
	Phone    string            `json:"phone"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
	Channels []string          `json:"channels"`
	Audience string            `json:"audience"`
}

type channelResultItem struct {
	Attempted bool   `json:"attempted"`
	Sent      bool   `json:"sent"`
	Reason    string `json:"reason,omitempty"`
}

type dispatchResponse struct {
	Success  bool                         `json:"success"`
	Error    string                       `json:"error,omitempty"`
	Channels map[string]channelResultItem `json:"channels"`
}

func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	channels, err := parseChannels(req.Channels)
	if err != nil {
		return toHTTPError(err)
	}
	audience, err := parseAudience(req.Audience)
	if err != nil {
		return toHTTPError(err)
	}

	ctx := observability.WithTenantID(c.UserContext(), strings.TrimSpace(req.TenantID))
	outcome, err := h.dispatcher.Dispatch(ctx, domain.DispatchRequest{
		TenantID: strings.TrimSpace(req.TenantID),
		Phone:    strings.TrimSpace(req.Phone),
		Message:  strings.TrimSpace(req.Message),
		Channels: channels,
		Audience: audience,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDispatchResponse(outcome))
}

func (h *DispatchHandler) DispatchTemplate(c *fiber.Ctx) error {
	var req templateDispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	kind, err := domain.ParseTemplateKindFromString(req.Template)
	if err != nil {
		return toHTTPError(err)
	}
	channels, err := parseChannels(req.Channels)
	if err != nil {
		return toHTTPError(err)
	}
	audience, err := parseAudience(req.Audience)
	if err != nil {
		return toHTTPError(err)
	}

	ctx := observability.WithTenantID(c.UserContext(), strings.TrimSpace(req.TenantID))
	outcome, err := h.dispatcher.DispatchTemplate(ctx, dispatch.TemplateRequest{
		TenantID: strings.TrimSpace(req.TenantID),
		Phone:    strings.TrimSpace(req.Phone),
		Template: kind,
		Data:     req.Data,
		Channels: channels,
		Audience: audience,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDispatchResponse(outcome))
}

func toDispatchResponse(outcome domain.DispatchOutcome) dispatchResponse {
	resp := dispatchResponse{
		Success:  outcome.Success,
		Channels: make(map[string]channelResultItem, len(outcome.Channels)),
	}
	if !outcome.Success {
		resp.Error = outcome.Reason
	}
	for ch, result := range outcome.Channels {
		resp.Channels[ch.String()] = channelResultItem{
			Attempted: result.Attempted,
			Sent:      result.Sent,
			Reason:    result.Reason,
		}
	}
	return resp
}

func parseChannels(raw []string) ([]domain.Channel, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", domain.ErrValidation)
	}
	channels := make([]domain.Channel, 0, len(raw))
	for _, item := range raw {
		channel, err := domain.ParseChannelFromString(item)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

func parseAudience(raw string) (domain.Audience, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.AudienceCustomer, nil
	}
	return domain.ParseAudienceFromString(raw)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConfigUnresolvable):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
