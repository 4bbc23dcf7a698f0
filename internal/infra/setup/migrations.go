package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"drawbit/internal/domain"
)

// MigrateDB 迁移 users 和 kv_entries 两张表。
// users.email 和 kv_entries.entry_key 的长度限制为 191，以便在 utf8mb4 下建立索引。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.KVEntry{}); err != nil {
		logrus.WithError(err).Error("Failed to auto-migrate tables")
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	logrus.Info("Database migration completed successfully")
	return nil
}
