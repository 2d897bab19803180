package atproto

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"github.com/lukelittle/claroz/internal/core"
)

type authorFeedResponse struct {
	Feed   []feedEntry `json:"feed"`
	Cursor string      `json:"cursor"`
}

type feedEntry struct {
	Post feedPost `json:"post"`
}

type feedPost struct {
	URI    string               `json:"uri"`
	CID    string               `json:"cid"`
	Author core.FederatedAuthor `json:"author"`
	Record postRecord           `json:"record"`

	LikeCount  int64 `json:"likeCount"`
	ReplyCount int64 `json:"replyCount"`
}

type postRecord struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// GetAuthorFeed fetches one page of an actor's posts. The cursor is an
// opaque continuation token from the previous call, passed through
// unmodified. On any failure the result is an empty list and an empty
// cursor: callers must read that as "no data available now", not "the
// actor has no posts".
func (c *Client) GetAuthorFeed(ctx context.Context, handle, cursor string, limit int) ([]core.FederatedPost, string) {
	req := c.r(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&authorFeedResponse{})

	if handle != "" {
		req.SetQueryParam("actor", handle)
	}
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}

	res, err := req.Get(getAuthorFeedPath)
	if err != nil {
		c.logger.Error("author feed fetch failed", "handle", handle, "error", err)
		return nil, ""
	}

	if res.IsError() {
		c.logger.Error("author feed fetch rejected", "handle", handle, "status", res.StatusCode())
		return nil, ""
	}

	feed := res.Result().(*authorFeedResponse)

	posts := lo.Map(feed.Feed, func(entry feedEntry, _ int) core.FederatedPost {
		return core.FederatedPost{
			URI:        entry.Post.URI,
			CID:        entry.Post.CID,
			Author:     entry.Post.Author,
			Text:       entry.Post.Record.Text,
			CreatedAt:  entry.Post.Record.CreatedAt,
			LikeCount:  entry.Post.LikeCount,
			ReplyCount: entry.Post.ReplyCount,
		}
	})

	return posts, feed.Cursor
}
