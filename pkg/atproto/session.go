package atproto

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lukelittle/claroz/internal/core"
)

type refreshSessionResponse struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
}

// RefreshSession exchanges a refresh token for a rotated access/refresh
// pair. Unlike the read operations this propagates failure: the caller
// must persist the new pair on success and must not assume the old pair
// is still valid after a failure.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	res, err := c.r(ctx).
		SetBody(map[string]string{"refreshToken": refreshToken}).
		SetResult(&refreshSessionResponse{}).
		Post(refreshSessionPath)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: refresh rejected with status %d", core.ErrAuthExpired, res.StatusCode())
	}
	if res.IsError() {
		return nil, fmt.Errorf("refresh session: status %d", res.StatusCode())
	}

	session := res.Result().(*refreshSessionResponse)
	if session.AccessJwt == "" || session.RefreshJwt == "" {
		return nil, fmt.Errorf("%w: refresh response missing tokens", core.ErrMalformedRemoteData)
	}

	return &core.TokenPair{
		AccessToken:  session.AccessJwt,
		RefreshToken: session.RefreshJwt,
	}, nil
}
