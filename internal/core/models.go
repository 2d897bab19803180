package core

import (
	"time"

	"github.com/google/uuid"
)

// ProfileModel is the local identity plus its decentralized attributes and
// the optional link to a remote AT-Proto-compatible server. One profile
// exists per local account, created exactly once.
type ProfileModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username string    `gorm:"uniqueIndex;not null"`

	DID    *string `gorm:"uniqueIndex"`
	Handle *string `gorm:"uniqueIndex"`

	DisplayName string
	Bio         string

	AvatarCID      string
	AvatarFilename string

	// Denormalized counters. A cache over the authoritative rows, mutated
	// only by the follow graph and the post lifecycle, never directly.
	FollowsCount   int64
	FollowersCount int64
	PostsCount     int64

	// Federation link. All five fields are set and cleared together.
	FederationServer       *string
	FederationHandle       *string
	FederationDID          *string
	FederationAccessToken  *string
	FederationRefreshToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// FederationLinked reports whether the profile can act against a remote
// server: it needs at least a server URL and an access token.
func (p *ProfileModel) FederationLinked() bool {
	return p.FederationServer != nil && p.FederationAccessToken != nil
}

// FollowModel is a directed follower->followee edge. The edge set is the
// source of truth for the profile counters.
type FollowModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_follow_edge;not null"`
	FolloweeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_follow_edge;not null"`

	CreatedAt time.Time
}

func (FollowModel) TableName() string {
	return "follows"
}

// PostModel is a locally authored post. Media bytes are never stored
// inline: once staged, ImageCID is the only reference to the content and
// OriginalFilename is cosmetic metadata.
type PostModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null"`

	ImageCID         string
	OriginalFilename string
	Caption          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PostModel) TableName() string {
	return "posts"
}

type LikeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_like_once;not null"`
	PostID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_like_once;index;not null"`

	CreatedAt time.Time
}

func (LikeModel) TableName() string {
	return "likes"
}

type CommentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null"`
	PostID    uuid.UUID `gorm:"type:uuid;index;not null"`

	Text string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CommentModel) TableName() string {
	return "comments"
}
