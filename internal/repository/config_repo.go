package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storesense/notify-core/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantConfigRepository is the durable store for per-tenant notification
// configuration.
type TenantConfigRepository interface {
	Get(ctx context.Context, tenantID string) (*domain.TenantConfig, error)
	Upsert(ctx context.Context, tenantID string, cfg domain.TenantConfig) error
}

type GormTenantConfigRepo struct {
	db *gorm.DB
}

func NewGormTenantConfigRepo(db *gorm.DB) *GormTenantConfigRepo {
	return &GormTenantConfigRepo{db: db}
}

func (r *GormTenantConfigRepo) Get(ctx context.Context, tenantID string) (*domain.TenantConfig, error) {
	var model TenantConfigModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cfg domain.TenantConfig
	if err := json.Unmarshal([]byte(model.Config), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode stored config for tenant %q: %w", tenantID, err)
	}
	return &cfg, nil
}

func (r *GormTenantConfigRepo) Upsert(ctx context.Context, tenantID string, cfg domain.TenantConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config for tenant %q: %w", tenantID, err)
	}

	model := TenantConfigModel{
		TenantID: tenantID,
		Config:   string(payload),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
		}).
		Create(&model).Error
}
