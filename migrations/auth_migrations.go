package migrations

import (
	authModels "towerhub-api/packages/auth/models"

	"gorm.io/gorm"
)

func GetAuthMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_01_000000_create_users_table",
			Up: func(db *gorm.DB) error {
				if err := db.AutoMigrate(&authModels.User{}); err != nil {
					return err
				}
				if !isPostgres(db) {
					return nil
				}
				// Index GIN pour les filtres "roles @> ..."
				return db.Exec(`CREATE INDEX IF NOT EXISTS idx_users_roles ON users USING GIN (roles)`).Error
			},
			Down: dropTables(&authModels.User{}),
		},
		{
			Name: "2025_01_02_000000_create_refresh_tokens_table",
			Up:   createTables(&authModels.RefreshToken{}),
			Down: dropTables(&authModels.RefreshToken{}),
		},
	}
}
