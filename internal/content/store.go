// Package content binds the blob store client into the service graph.
package content

import (
	"context"
	"log/slog"

	"github.com/lukelittle/claroz/internal/config"
	"github.com/lukelittle/claroz/internal/metrics"
	"github.com/lukelittle/claroz/pkg/ipfs"

	"resty.dev/v3"
)

// Store is the application-wide content-addressed media store.
type Store struct {
	Logger *slog.Logger
	Config *config.Config

	*ipfs.Client
}

func (s *Store) Init(_ context.Context) error {
	s.Client = ipfs.NewClient(ipfs.Config{
		APIURL:     s.Config.IPFSAPIURL,
		GatewayURL: s.Config.IPFSGatewayURL,
		MediaDir:   s.Config.MediaDir,
		Logger:     s.Logger,
		ResponseMiddlewares: []resty.ResponseMiddleware{
			metrics.RestyLatency("ipfs"),
		},
	})

	return nil
}

func (s *Store) Shutdown(_ context.Context) error {
	return s.Client.Close()
}
