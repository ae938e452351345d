package migrations

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMigrator(t *testing.T) (*Migrator, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	m, err := NewMigrator(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("new migrator: %v", err)
	}
	for _, migration := range All() {
		m.AddMigration(migration)
	}
	return m, db
}

func TestMigrateIsIdempotent(t *testing.T) {
	m, db := newMigrator(t)

	applied, err := m.Migrate()
	assert.Equal(t, nil, err)
	assert.Equal(t, len(All()), applied)

	applied, err = m.Migrate()
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, applied)

	for _, table := range []string{"users", "players", "towers", "tournament_organizers", "rank_snapshots"} {
		assert.T(t, db.Migrator().HasTable(table), table)
	}

	status, err := m.Status()
	assert.Equal(t, nil, err)
	assert.Equal(t, len(All()), len(status))
	assert.Equal(t, 1, status[0].Batch)
}

func TestRollbackLastBatch(t *testing.T) {
	m, db := newMigrator(t)

	_, err := m.Migrate()
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, m.Rollback(1))
	assert.T(t, !db.Migrator().HasTable("players"))
	assert.T(t, !db.Migrator().HasTable("tournament_organizers"))

	pending, err := m.Pending()
	assert.Equal(t, nil, err)
	assert.Equal(t, len(All()), len(pending))
}
