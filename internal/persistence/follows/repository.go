package follows

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukelittle/claroz/internal/core"
)

// Repository is the follow graph. Every edge mutation recomputes the
// affected counters from the edge set instead of incrementing in place, so
// the counters cannot drift from missed updates.
type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "follows.Repository")
	return nil
}

// Follow adds the follower->followee edge. Self-follows and existing edges
// are silent no-ops.
func (r *Repository) Follow(ctx context.Context, follower, followee uuid.UUID) error {
	if follower == followee {
		return nil
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		var existing core.FollowModel
		err := tx.
			Where("follower_id = ? AND followee_id = ?", follower, followee).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		edge := core.FollowModel{
			ID:         uuid.New(),
			FollowerID: follower,
			FolloweeID: followee,
		}
		if err := tx.Create(&edge).Error; err != nil {
			return err
		}

		return recount(tx, follower, followee)
	})
}

// Unfollow removes the follower->followee edge if present; no-op otherwise.
func (r *Repository) Unfollow(ctx context.Context, follower, followee uuid.UUID) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		res := tx.
			Where("follower_id = ? AND followee_id = ?", follower, followee).
			Delete(&core.FollowModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return recount(tx, follower, followee)
	})
}

func (r *Repository) IsFollowing(ctx context.Context, follower, followee uuid.UUID) (bool, error) {
	var count int64

	err := r.DB.WithContext(ctx).
		Model(&core.FollowModel{}).
		Where("follower_id = ? AND followee_id = ?", follower, followee).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// FolloweesOf returns the profiles the given profile follows.
func (r *Repository) FolloweesOf(ctx context.Context, follower uuid.UUID) ([]core.ProfileModel, error) {
	var followees []core.ProfileModel

	err := r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Joins("JOIN follows ON follows.followee_id = profiles.id").
		Where("follows.follower_id = ?", follower).
		Find(&followees).Error
	if err != nil {
		return nil, err
	}

	return followees, nil
}

// recount refreshes followsCount of the follower and followersCount of the
// followee from the authoritative edge set.
func recount(tx *gorm.DB, follower, followee uuid.UUID) error {
	var follows int64
	if err := tx.Model(&core.FollowModel{}).Where("follower_id = ?", follower).Count(&follows).Error; err != nil {
		return err
	}

	err := tx.Model(&core.ProfileModel{}).
		Where("id = ?", follower).
		Update("follows_count", follows).Error
	if err != nil {
		return err
	}

	var followers int64
	if err := tx.Model(&core.FollowModel{}).Where("followee_id = ?", followee).Count(&followers).Error; err != nil {
		return err
	}

	return tx.Model(&core.ProfileModel{}).
		Where("id = ?", followee).
		Update("followers_count", followers).Error
}
