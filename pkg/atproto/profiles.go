package atproto

import (
	"context"

	"github.com/lukelittle/claroz/internal/core"
)

// GetProfile fetches one actor's profile summary, serving repeat lookups
// from the TTL cache. Profile lookups degrade gracefully: on any transport
// or parse failure the result is nil and the failure is only logged.
func (c *Client) GetProfile(ctx context.Context, handle string) *core.RemoteProfile {
	if cached := c.profiles.Get(handle); cached != nil {
		return cached
	}

	res, err := c.r(ctx).
		SetQueryParam("actor", handle).
		SetResult(&core.RemoteProfile{}).
		Get(getProfilePath)
	if err != nil {
		c.logger.Error("profile fetch failed", "handle", handle, "error", err)
		return nil
	}

	if res.IsError() {
		c.logger.Error("profile fetch rejected", "handle", handle, "status", res.StatusCode())
		return nil
	}

	profile := res.Result().(*core.RemoteProfile)
	c.profiles.Put(handle, profile)

	return profile
}
