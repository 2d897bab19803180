package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/lukelittle/claroz/internal/core"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "profiles.Repository")
	return nil
}

// Create makes the one profile of a new local account. Accounts without a
// federation identity get a generated did:web DID and an @username handle.
func (r *Repository) Create(ctx context.Context, username string) (*core.ProfileModel, error) {
	profile := &core.ProfileModel{
		ID:          uuid.New(),
		Username:    username,
		DID:         lo.ToPtr(fmt.Sprintf("did:web:%s", uuid.NewString())),
		Handle:      lo.ToPtr("@" + username),
		DisplayName: username,
	}

	if err := r.DB.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}

	return profile, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*core.ProfileModel, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*core.ProfileModel, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *Repository) getBy(ctx context.Context, query string, arg any) (*core.ProfileModel, error) {
	var profile core.ProfileModel

	err := r.DB.WithContext(ctx).Where(query, arg).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile %v", core.ErrNotFound, arg)
		}
		return nil, err
	}

	return &profile, nil
}

// Link stores the five federation fields of a profile.
func (r *Repository) Link(ctx context.Context, id uuid.UUID, link core.FederationLink) error {
	return r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"federation_server":        link.Server,
			"federation_handle":        link.Handle,
			"federation_did":           link.DID,
			"federation_access_token":  link.AccessToken,
			"federation_refresh_token": link.RefreshToken,
		}).Error
}

// Unlink clears all five federation fields in one update. Unlinking an
// already-unlinked profile is a no-op that still succeeds.
func (r *Repository) Unlink(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"federation_server":        nil,
			"federation_handle":        nil,
			"federation_did":           nil,
			"federation_access_token":  nil,
			"federation_refresh_token": nil,
		}).Error
}

func (r *Repository) UpdateTokens(ctx context.Context, id uuid.UUID, pair core.TokenPair) error {
	return r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"federation_access_token":  pair.AccessToken,
			"federation_refresh_token": pair.RefreshToken,
		}).Error
}

func (r *Repository) SetAvatar(ctx context.Context, id uuid.UUID, cid, filename string) error {
	return r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"avatar_cid":      cid,
			"avatar_filename": filename,
		}).Error
}

// RecountPosts refreshes postsCount from the posts table. The counter is a
// cache; the rows are the source of truth.
func (r *Repository) RecountPosts(ctx context.Context, id uuid.UUID) error {
	var count int64

	err := r.DB.WithContext(ctx).
		Model(&core.PostModel{}).
		Where("profile_id = ?", id).
		Count(&count).Error
	if err != nil {
		return err
	}

	return r.DB.WithContext(ctx).
		Model(&core.ProfileModel{}).
		Where("id = ?", id).
		Update("posts_count", count).Error
}
