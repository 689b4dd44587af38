// Package testutils provides database helpers for tests. Unit tests run
// against an isolated in-memory SQLite database; integration tests can
// request a real PostgreSQL instance via testcontainers.
package testutils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory database unique to the calling test and
// migrates the given models into it. The database lives until the test
// ends.
func NewTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "failed to migrate test schema")
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
