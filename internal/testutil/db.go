// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eventease/internal/db"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// The pool is capped at one connection so every statement sees the same
// memory database and transactions serialize like row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), db.Options())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb, false))
	return gdb
}
