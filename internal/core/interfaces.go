package core

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DB interface {
	Model(a any) *gorm.DB
	WithContext(ctx context.Context) *gorm.DB
	Transaction(fn func(tx *gorm.DB) error) error
}

// ContentStore is a content-addressed blob store. Addressing is by content
// hash, so caller-supplied names are cosmetic and collisions impossible.
type ContentStore interface {
	// Add uploads content and returns its CID. It may retain an advisory
	// local working copy under name.
	Add(ctx context.Context, name string, content []byte) (string, error)
	// Cat resolves a CID back to bytes.
	Cat(ctx context.Context, cid string) ([]byte, error)
	// GatewayURL builds a public retrieval URL for a CID. Pure, no I/O.
	GatewayURL(cid string) string
	// RemoveLocal deletes only the local working copy; remote content is
	// immutable and never deleted.
	RemoveLocal(name string) error
}

// FederationClient talks to one remote AT-Proto-compatible server,
// optionally as one bearer credential. Read operations degrade instead of
// failing; RefreshSession is the only operation whose failure the caller
// must react to.
type FederationClient interface {
	// GetProfile returns nil on any transport or parse failure.
	GetProfile(ctx context.Context, handle string) *RemoteProfile
	// GetAuthorFeed returns the posts of one actor plus a continuation
	// cursor. An empty result means "no data available now", not "no
	// posts". The cursor is opaque and passed through unmodified.
	GetAuthorFeed(ctx context.Context, handle, cursor string, limit int) ([]FederatedPost, string)
	// RefreshSession exchanges a refresh token for a new pair. After a
	// failure the old pair must not be assumed valid.
	RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// FederationDialer hands out a client bound to one remote server and
// credential.
type FederationDialer interface {
	Dial(serverURL, accessToken string) FederationClient
}

// WebhookEvent is a remote-initiated notification, as registered with the
// federation server.
type WebhookEvent struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
}

// FederationService owns the account-to-remote link lifecycle and hands
// out clients for linked profiles.
type FederationService interface {
	Link(ctx context.Context, profileID uuid.UUID, link FederationLink) error
	Unlink(ctx context.Context, profileID uuid.UUID) error
	Refresh(ctx context.Context, profileID uuid.UUID) error
	// ClientFor returns nil when the profile has no usable link.
	ClientFor(profile *ProfileModel) FederationClient
	HandleWebhook(ctx context.Context, event WebhookEvent) error
}

type ProfileRepository interface {
	// Create makes the one profile of a new local account, assigning a
	// did:web DID and an @username handle.
	Create(ctx context.Context, username string) (*ProfileModel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProfileModel, error)
	GetByUsername(ctx context.Context, username string) (*ProfileModel, error)

	// Link stores all five federation fields.
	Link(ctx context.Context, id uuid.UUID, link FederationLink) error
	// Unlink clears all five federation fields atomically. Idempotent.
	Unlink(ctx context.Context, id uuid.UUID) error
	// UpdateTokens persists a rotated token pair.
	UpdateTokens(ctx context.Context, id uuid.UUID, pair TokenPair) error

	SetAvatar(ctx context.Context, id uuid.UUID, cid, filename string) error
	// RecountPosts refreshes the denormalized postsCount from the posts
	// table.
	RecountPosts(ctx context.Context, id uuid.UUID) error
}

// FederationLink is the five-field remote account binding.
type FederationLink struct {
	Server       string `json:"server"`
	Handle       string `json:"handle"`
	DID          string `json:"did"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type PostRepository interface {
	Create(ctx context.Context, post *PostModel) error
	// ListByProfiles returns the local posts of the given authors, newest
	// first, with author identity and aggregate like/comment counts.
	ListByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]LocalPost, error)
}

// FollowGraph maintains the directed follow edges and keeps the
// denormalized counters in sync by recounting on every mutation.
type FollowGraph interface {
	Follow(ctx context.Context, follower, followee uuid.UUID) error
	Unfollow(ctx context.Context, follower, followee uuid.UUID) error
	IsFollowing(ctx context.Context, follower, followee uuid.UUID) (bool, error)
	// FolloweesOf returns the profiles the given profile follows.
	FolloweesOf(ctx context.Context, follower uuid.UUID) ([]ProfileModel, error)
}

// FeedService merges local and federated posts into one ordered, paginated
// feed.
type FeedService interface {
	// ListFeed is the following feed of the requesting profile.
	ListFeed(ctx context.Context, viewer uuid.UUID, page int) (*FeedPage, error)
	// ListProfileFeed is the feed of a single profile, addressed by
	// username.
	ListProfileFeed(ctx context.Context, username string, page int) (*FeedPage, error)
}
