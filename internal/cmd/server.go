package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"github.com/lukelittle/claroz/internal/api"
	"github.com/lukelittle/claroz/internal/cmd/flags"
	"github.com/lukelittle/claroz/internal/content"
	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/federation"
	"github.com/lukelittle/claroz/internal/feed"
	"github.com/lukelittle/claroz/internal/metrics"
	"github.com/lukelittle/claroz/internal/persistence"
	"github.com/lukelittle/claroz/internal/persistence/follows"
	"github.com/lukelittle/claroz/internal/persistence/posts"
	"github.com/lukelittle/claroz/internal/persistence/profiles"
	"github.com/lukelittle/claroz/internal/posting"
)

var serverCmd = &cli.Command{
	Name:  "server",
	Usage: "Run the API server",
	Flags: []cli.Flag{
		flags.DatabaseURL,
		flags.ListenAddr,
		flags.MetricsAddr,
		flags.IPFSAPIURL,
		flags.IPFSGatewayURL,
		flags.MediaDir,
		flags.FeedPageSize,
		flags.FederationLimit,
		flags.FederationWorkers,
		flags.FederationTimeout,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide[core.DB](&persistence.DB{}),

			pal.Provide[core.ProfileRepository](&profiles.Repository{}),
			pal.Provide[core.PostRepository](&posts.Repository{}),
			pal.Provide[core.FollowGraph](&follows.Repository{}),

			pal.Provide[core.ContentStore](&content.Store{}),
			pal.Provide[core.FederationDialer](&federation.Dialer{}),
			pal.Provide[core.FederationService](&federation.Service{}),
			pal.Provide[core.FeedService](&feed.Aggregator{}),
			pal.Provide(&posting.Service{}),

			pal.Provide(&api.Handlers{}),
			pal.Provide(&api.Server{}),
			pal.Provide(&metrics.Server{}),
		)
	},
}
