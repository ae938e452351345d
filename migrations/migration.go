package migrations

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"unique;not null"`
	Batch     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type MigrationFunc func(*gorm.DB) error

type MigrationDefinition struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

// Migrator applies migrations in batches: one Migrate call is one batch,
// and Rollback undoes whole batches, newest first.
type Migrator struct {
	db         *gorm.DB
	migrations []MigrationDefinition
	logger     zerolog.Logger
}

func NewMigrator(db *gorm.DB, logger zerolog.Logger) (*Migrator, error) {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	return &Migrator{
		db:     db,
		logger: logger,
	}, nil
}

// All returns every migration of the application, in order.
func All() []MigrationDefinition {
	return append(GetAuthMigrations(), GetCoreMigrations()...)
}

func (m *Migrator) AddMigration(migration MigrationDefinition) {
	m.migrations = append(m.migrations, migration)
}

func (m *Migrator) Migrate() (int, error) {
	m.logger.Info().Msg("running database migrations")

	batch, err := m.latestBatch()
	if err != nil {
		return 0, err
	}
	batch++

	applied := 0
	for _, migration := range m.migrations {
		done, err := m.hasRun(migration.Name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		m.logger.Info().Str("migration", migration.Name).Msg("migrating")

		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration %s failed: %w", migration.Name, err)
			}
			if err := tx.Create(&Migration{Name: migration.Name, Batch: batch}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied++
	}

	m.logger.Info().Int("applied", applied).Int("batch", batch).Msg("migration completed")
	return applied, nil
}

func (m *Migrator) Rollback(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	batch, err := m.latestBatch()
	if err != nil {
		return err
	}

	m.logger.Info().Int("steps", steps).Msg("rolling back")

	for i := 0; i < steps && batch > 0; i++ {
		var records []Migration
		if err := m.db.Where("batch = ?", batch).Order("id DESC").Find(&records).Error; err != nil {
			return err
		}

		for _, record := range records {
			migration := m.findMigration(record.Name)
			if migration == nil {
				return fmt.Errorf("migration definition not found: %s", record.Name)
			}
			if migration.Down == nil {
				return fmt.Errorf("rollback not defined for migration: %s", record.Name)
			}

			m.logger.Info().Str("migration", record.Name).Msg("rolling back")

			err := m.db.Transaction(func(tx *gorm.DB) error {
				if err := migration.Down(tx); err != nil {
					return fmt.Errorf("rollback failed for %s: %w", record.Name, err)
				}
				if err := tx.Delete(&record).Error; err != nil {
					return fmt.Errorf("failed to remove migration record %s: %w", record.Name, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		batch--
	}

	m.logger.Info().Msg("rollback completed")
	return nil
}

// Status lists applied migrations, oldest batch first.
func (m *Migrator) Status() ([]Migration, error) {
	var applied []Migration
	err := m.db.Order("batch ASC, id ASC").Find(&applied).Error
	return applied, err
}

// Pending lists the registered migrations that have not run yet.
func (m *Migrator) Pending() ([]string, error) {
	var pending []string
	for _, migration := range m.migrations {
		done, err := m.hasRun(migration.Name)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, migration.Name)
		}
	}
	return pending, nil
}

func (m *Migrator) hasRun(name string) (bool, error) {
	var count int64
	err := m.db.Model(&Migration{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (m *Migrator) latestBatch() (int, error) {
	var migration Migration
	err := m.db.Order("batch DESC").First(&migration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return migration.Batch, err
}

func (m *Migrator) findMigration(name string) *MigrationDefinition {
	for i := range m.migrations {
		if m.migrations[i].Name == name {
			return &m.migrations[i]
		}
	}
	return nil
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// createTables runs AutoMigrate for the given models, so rerunning a
// migration against an existing schema is harmless.
func createTables(models ...interface{}) MigrationFunc {
	return func(db *gorm.DB) error {
		return db.AutoMigrate(models...)
	}
}

// dropTables drops in reverse order so foreign keys go first.
func dropTables(tables ...interface{}) MigrationFunc {
	return func(db *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				return err
			}
		}
		return nil
	}
}
