// Package posting creates local posts with the two-phase media rule:
// bytes are staged in the content store first, and the persisted row only
// ever carries the resulting CID.
package posting

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lukelittle/claroz/internal/core"
)

type Service struct {
	Logger   *slog.Logger
	Store    core.ContentStore
	Posts    core.PostRepository
	Profiles core.ProfileRepository
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "posting.Service")
	return nil
}

// CreatePost stages the media, persists the post with the CID only, and
// refreshes the author's postsCount. A content-store failure is fatal to
// the whole operation and surfaced to the caller.
func (s *Service) CreatePost(ctx context.Context, profileID uuid.UUID, filename string, media []byte, caption string) (*core.PostModel, error) {
	post := &core.PostModel{
		ProfileID: profileID,
		Caption:   caption,
	}

	if len(media) > 0 {
		cid, err := s.Store.Add(ctx, filename, media)
		if err != nil {
			return nil, err
		}

		post.ImageCID = cid
		post.OriginalFilename = filename
	}

	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.Profiles.RecountPosts(ctx, profileID); err != nil {
		return nil, err
	}

	return post, nil
}

// SetAvatar stages a profile picture and stores its CID on the profile.
func (s *Service) SetAvatar(ctx context.Context, profileID uuid.UUID, filename string, media []byte) error {
	cid, err := s.Store.Add(ctx, filename, media)
	if err != nil {
		return err
	}

	return s.Profiles.SetAvatar(ctx, profileID, cid, filename)
}
