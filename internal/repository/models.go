package repository

import (
	"time"

	"github.com/storesense/notify-core/internal/domain"
)

// TenantConfigModel is the persistence model for notification_configs. The
// full tenant configuration is stored as one JSON blob keyed by tenant id.
type TenantConfigModel struct {
	TenantID  string `gorm:"type:varchar(64);primaryKey"`
	Config    string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TenantConfigModel) TableName() string {
	return "notification_configs"
}

// MessageLogModel is the persistence model for message_logs. Rows are
// append-only.
type MessageLogModel struct {
	ID        string           `gorm:"type:uuid;primaryKey"`
	TenantID  string           `gorm:"type:varchar(64);not null"`
	Phone     string           `gorm:"type:varchar(32);not null"`
	Message   string           `gorm:"type:text;not null"`
	Channel   domain.Channel   `gorm:"type:varchar(10);not null"`
	Status    domain.LogStatus `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}

func (MessageLogModel) TableName() string {
	return "message_logs"
}

func messageLogModelFromDomain(l *domain.MessageLog) *MessageLogModel {
	if l == nil {
		return nil
	}

	return &MessageLogModel{
		ID:        l.ID,
		TenantID:  l.TenantID,
		Phone:     l.Phone,
		Message:   l.Message,
		Channel:   l.Channel,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
}

func messageLogModelToDomain(m *MessageLogModel) *domain.MessageLog {
	if m == nil {
		return nil
	}

	return &domain.MessageLog{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Phone:     m.Phone,
		Message:   m.Message,
		Channel:   m.Channel,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}
