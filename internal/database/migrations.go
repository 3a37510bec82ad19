package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate
// derives from the model tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Renewal sweep scan
		{"licenses", "idx_licenses_renewal_scan", "is_active, auto_renewal, expires_at"},

		// Membership lookups
		{"organization_memberships", "idx_memberships_user_id", "user_id"},

		// Invitation expiry cleanup and listing
		{"invitations", "idx_invitations_expires_at", "expires_at"},
		{"invitations", "idx_invitations_organization_id", "organization_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		logrus.WithField("index", idx.name).Info("Created index")
	}

	return nil
}
