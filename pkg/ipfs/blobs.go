package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lukelittle/claroz/internal/core"
)

const (
	addPath = "/add"
	catPath = "/cat"
)

type addResponse struct {
	Hash string `json:"Hash"`
	Name string `json:"Name"`
}

// Add uploads content and returns its CID. The name is cosmetic metadata:
// addressing is by content hash, so it is accepted unchanged and never
// disambiguated. A local working copy is kept under the media dir; losing
// it is harmless since the remote content is the source of truth.
func (c *Client) Add(ctx context.Context, name string, content []byte) (string, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetFileReader("file", name, bytes.NewReader(content)).
		SetResult(&addResponse{}).
		Post(addPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	if res.IsError() {
		return "", fmt.Errorf("%w: status %d", core.ErrUploadRejected, res.StatusCode())
	}

	cid := res.Result().(*addResponse).Hash
	if cid == "" {
		return "", fmt.Errorf("%w: add response carried no hash", core.ErrUploadRejected)
	}

	c.keepLocalCopy(name, content)

	return cid, nil
}

// Cat resolves a CID back to its bytes.
func (c *Client) Cat(ctx context.Context, cid string) ([]byte, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetQueryParam("arg", cid).
		Post(catPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	if res.IsError() {
		return nil, fmt.Errorf("%w: cid %s", core.ErrNotFound, cid)
	}

	return res.Bytes(), nil
}

// GatewayURL builds the public retrieval URL for a CID. No I/O.
func (c *Client) GatewayURL(cid string) string {
	return c.gatewayURL + "/" + cid
}

// RemoveLocal deletes the advisory local copy stored under name. The
// remote content is immutable and stays.
func (c *Client) RemoveLocal(name string) error {
	path := filepath.Join(c.mediaDir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// LocalPath returns the filesystem path a local copy of name would live
// at, for operations that need a real file.
func (c *Client) LocalPath(name string) string {
	return filepath.Join(c.mediaDir, name)
}

func (c *Client) keepLocalCopy(name string, content []byte) {
	if c.mediaDir == "" {
		return
	}

	path := filepath.Join(c.mediaDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.logger.Warn("cannot create media dir", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		c.logger.Warn("cannot keep local media copy", "path", path, "error", err)
	}
}
