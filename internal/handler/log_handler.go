package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type MessageLogHandler struct {
	logs repository.MessageLogRepository
}

func NewMessageLogHandler(logs repository.MessageLogRepository) (*MessageLogHandler, error) {
	if logs == nil {
		return nil, fmt.Errorf("message log repository is required")
	}
	return &MessageLogHandler{logs: logs}, nil
}

func RegisterMessageLogRoutes(router fiber.Router, logs repository.MessageLogRepository) error {
	h, err := NewMessageLogHandler(logs)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/message-logs", h.ListMessageLogs)

	return nil
}

type messageLogResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type listMessageLogsResponse struct {
	Data []messageLogResponse `json:"data"`
	Meta listMeta             `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *MessageLogHandler) ListMessageLogs(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	logs, total, err := h.logs.List(c.UserContext(), params)
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]messageLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, messageLogResponse{
			ID:        l.ID,
			TenantID:  l.TenantID,
			Phone:     l.Phone,
			Message:   l.Message,
			Channel:   l.Channel.String(),
			Status:    l.Status.String(),
			CreatedAt: l.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listMessageLogsResponse{
		Data: items,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		TenantID: strings.TrimSpace(c.Query("tenantId")),
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.TenantID == "" {
		return repository.ListParams{}, fmt.Errorf("%w: tenantId is required", domain.ErrValidation)
	}
	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseLogStatusFromString(rawStatus)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Status = &status
	}

	if rawChannel := strings.TrimSpace(c.Query("channel")); rawChannel != "" {
		channel, err := domain.ParseChannelFromString(rawChannel)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Channel = &channel
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}
