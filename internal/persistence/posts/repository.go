package posts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lukelittle/claroz/internal/core"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "posts.Repository")
	return nil
}

func (r *Repository) Create(ctx context.Context, post *core.PostModel) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	return r.DB.WithContext(ctx).Create(post).Error
}

type feedRow struct {
	ID               uuid.UUID
	ProfileID        uuid.UUID
	ImageCid         string
	OriginalFilename string
	Caption          string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	AuthorHandle      *string
	AuthorDisplayName string

	LikeCount    int64
	CommentCount int64
}

// ListByProfiles returns the local posts of the given authors, newest
// first, with author identity and aggregate like/comment counts in one
// query.
func (r *Repository) ListByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]core.LocalPost, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}

	var rows []feedRow

	err := r.DB.WithContext(ctx).
		Model(&core.PostModel{}).
		Select(`posts.id, posts.profile_id, posts.image_cid, posts.original_filename,
			posts.caption, posts.created_at, posts.updated_at,
			profiles.handle AS author_handle, profiles.display_name AS author_display_name,
			(SELECT count(*) FROM likes WHERE likes.post_id = posts.id) AS like_count,
			(SELECT count(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count`).
		Joins("JOIN profiles ON profiles.id = posts.profile_id").
		Where("posts.profile_id IN ?", profileIDs).
		Order("posts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row feedRow, _ int) core.LocalPost {
		return core.LocalPost{
			Post: core.PostModel{
				ID:               row.ID,
				ProfileID:        row.ProfileID,
				ImageCID:         row.ImageCid,
				OriginalFilename: row.OriginalFilename,
				Caption:          row.Caption,
				CreatedAt:        row.CreatedAt,
				UpdatedAt:        row.UpdatedAt,
			},
			AuthorHandle:      lo.FromPtr(row.AuthorHandle),
			AuthorDisplayName: row.AuthorDisplayName,
			LikeCount:         row.LikeCount,
			CommentCount:      row.CommentCount,
		}
	}), nil
}
