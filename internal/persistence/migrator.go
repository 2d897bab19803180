package persistence

import (
	"context"
	"log/slog"

	"github.com/lukelittle/claroz/internal/core"
)

// Migrator keeps the schema in sync with the models. The schema is small
// enough that gorm's AutoMigrate covers it.
type Migrator struct {
	Logger *slog.Logger
	DB     *DB
}

func (m *Migrator) Init(_ context.Context) error {
	m.Logger = m.Logger.With("component", "migrator")
	return nil
}

func (m *Migrator) Up(_ context.Context) error {
	m.Logger.Info("Migrating database")

	err := m.DB.db.AutoMigrate(
		&core.ProfileModel{},
		&core.FollowModel{},
		&core.PostModel{},
		&core.LikeModel{},
		&core.CommentModel{},
	)
	if err != nil {
		return err
	}

	m.Logger.Info("Database migration completed")
	return nil
}
