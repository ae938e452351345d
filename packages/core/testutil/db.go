// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns an in-memory database private to the test, with every
// model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	toMigrate := append([]interface{}{&authModels.User{}, &authModels.RefreshToken{}}, models.All()...)
	if err := db.AutoMigrate(toMigrate...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

var mobileSeq atomic.Int64

// CreateUser inserts a user and its player row sharing the same id.
func CreateUser(t *testing.T, db *gorm.DB, username string, roles ...string) models.Player {
	t.Helper()

	if len(roles) == 0 {
		roles = authModels.GetDefaultRoles()
	}
	user := authModels.User{
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Username: username,
		Mobile:   fmt.Sprintf("+336%08d", mobileSeq.Add(1)),
		Password: "x",
		Enabled:  true,
		Roles:    roles,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	player := models.Player{ID: user.ID, Username: username, Name: user.Name, Level: 1}
	if err := db.Create(&player).Error; err != nil {
		t.Fatalf("create player %s: %v", username, err)
	}
	return player
}

// SetStats overwrites the counters of a player.
func SetStats(t *testing.T, db *gorm.DB, playerID uint, points, kills, deaths, played, won, mvps int64) {
	t.Helper()

	err := db.Model(&models.Player{}).Where("id = ?", playerID).Updates(map[string]interface{}{
		"performance_points": points,
		"kills":              kills,
		"deaths":             deaths,
		"matches_played":     played,
		"matches_won":        won,
		"mvp_count":          mvps,
	}).Error
	if err != nil {
		t.Fatalf("set stats: %v", err)
	}
}
