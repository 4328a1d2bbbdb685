package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/storesense/notify-core/internal/repository"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_notification_configs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.TenantConfigModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.TenantConfigModel{})
			},
		},
		{
			ID: "000002_create_message_logs",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.MessageLogModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_message_logs_tenant_created ON message_logs (tenant_id, created_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_message_logs_tenant_status ON message_logs (tenant_id, status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.MessageLogModel{})
			},
		},
	})

	return m.Migrate()
}
