// Package persistencetest provides an in-memory database for repository
// tests.
package persistencetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lukelittle/claroz/internal/core"
)

// DB adapts a raw gorm handle to core.DB the way the postgres-backed
// service does.
type DB struct {
	db *gorm.DB
}

// New opens a fresh in-memory sqlite database with the full schema
// migrated. Each call gets its own database, so parallel tests never
// share state.
func New(t *testing.T) *DB {
	t.Helper()

	// A named shared-cache database keeps all pooled connections on one
	// store; the unique name isolates it from other tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&core.ProfileModel{},
		&core.FollowModel{},
		&core.PostModel{},
		&core.LikeModel{},
		&core.CommentModel{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close() //nolint:errcheck
		}
	})

	return &DB{db: db}
}

func (d *DB) Model(a any) *gorm.DB {
	return d.db.Model(a)
}

func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

func (d *DB) Transaction(fn func(tx *gorm.DB) error) error {
	return d.db.Transaction(fn)
}

// Gorm exposes the raw handle for test fixtures.
func (d *DB) Gorm() *gorm.DB {
	return d.db
}
