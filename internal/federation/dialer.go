package federation

import (
	"context"
	"log/slog"
	"sync"

	"resty.dev/v3"

	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/metrics"
	"github.com/lukelittle/claroz/pkg/atproto"
)

type clientKey struct {
	server string
	token  string
}

// Dialer hands out atproto clients bound to one server and credential.
// Clients are reused per (server, credential) so their profile caches
// survive across feed requests.
type Dialer struct {
	Logger *slog.Logger

	mu      sync.Mutex
	clients map[clientKey]*atproto.Client
}

func (d *Dialer) Init(_ context.Context) error {
	d.Logger = d.Logger.With("component", "federation.Dialer")
	d.clients = make(map[clientKey]*atproto.Client)
	return nil
}

func (d *Dialer) Shutdown(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, client := range d.clients {
		client.Close() //nolint:errcheck
	}
	d.clients = make(map[clientKey]*atproto.Client)

	return nil
}

func (d *Dialer) Dial(serverURL, accessToken string) core.FederationClient {
	key := clientKey{server: serverURL, token: accessToken}

	d.mu.Lock()
	defer d.mu.Unlock()

	if client, ok := d.clients[key]; ok {
		return client
	}

	client := atproto.NewClient(atproto.Config{
		ServerURL:   serverURL,
		AccessToken: accessToken,
		Logger:      d.Logger,
		ResponseMiddlewares: []resty.ResponseMiddleware{
			metrics.RestyLatency("atproto"),
		},
	})
	d.clients[key] = client

	return client
}
