package core

import "time"

// RemoteProfile is the summary shape a remote actor.getProfile response is
// normalized into.
type RemoteProfile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`

	FollowersCount int64 `json:"followersCount"`
	FollowsCount   int64 `json:"followsCount"`
	PostsCount     int64 `json:"postsCount"`
}

// FederatedAuthor identifies the author of a remote post.
type FederatedAuthor struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// FederatedPost is a remote post as fetched for one feed request. It is
// never persisted and never gets a local primary key; the remote URI acts
// as its identifier. CreatedAt carries the raw wire timestamp so that
// parse failures can be handled at normalization time instead of at fetch
// time.
type FederatedPost struct {
	URI    string          `json:"uri"`
	CID    string          `json:"cid"`
	Author FederatedAuthor `json:"author"`

	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`

	LikeCount  int64 `json:"likeCount"`
	ReplyCount int64 `json:"replyCount"`
}

// LocalPost is a local post projected with its author identity and
// aggregate counts, as returned by the post repository for feed reads.
type LocalPost struct {
	Post PostModel

	AuthorHandle      string
	AuthorDisplayName string

	LikeCount    int64
	CommentCount int64
}

// FeedItem is the normalized shape both local and federated posts are
// projected into before the merge step.
type FeedItem struct {
	ID        string `json:"id"`
	Federated bool   `json:"isFederated"`

	AuthorHandle      string `json:"authorHandle"`
	AuthorDisplayName string `json:"authorDisplayName"`

	MediaURL string `json:"mediaUrl,omitempty"`
	Caption  string `json:"caption"`

	CreatedAt time.Time `json:"createdAt"`

	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

// FeedPage is one fixed-size page of the merged feed.
type FeedPage struct {
	Items []FeedItem `json:"items"`
	Page  int        `json:"page"`
	Total int        `json:"total"`
}

// TokenPair is a rotated access/refresh credential pair returned by a
// successful refreshSession exchange.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
