package repository

import (
	"context"
	"time"

	"github.com/storesense/notify-core/internal/domain"
	"gorm.io/gorm"
)

type ListParams struct {
	TenantID string
	Status   *domain.LogStatus
	Channel  *domain.Channel
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// MessageLogRepository persists the append-only dispatch audit trail. There
// is deliberately no update or delete.
type MessageLogRepository interface {
	Create(ctx context.Context, l *domain.MessageLog) error
	List(ctx context.Context, params ListParams) ([]domain.MessageLog, int64, error)
}

type GormMessageLogRepo struct {
	db *gorm.DB
}

func NewGormMessageLogRepo(db *gorm.DB) *GormMessageLogRepo {
	return &GormMessageLogRepo{db: db}
}

func (r *GormMessageLogRepo) Create(ctx context.Context, l *domain.MessageLog) error {
	model := messageLogModelFromDomain(l)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if l != nil {
		*l = *messageLogModelToDomain(model)
	}
	return nil
}

func (r *GormMessageLogRepo) List(ctx context.Context, params ListParams) ([]domain.MessageLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&MessageLogModel{})

	if params.TenantID != "" {
		query = query.Where("tenant_id = ?", params.TenantID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []MessageLogModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]domain.MessageLog, 0, len(models))
	for i := range models {
		logs = append(logs, *messageLogModelToDomain(&models[i]))
	}

	return logs, total, nil
}
