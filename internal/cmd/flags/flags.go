package flags

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Aliases: []string{"d"},
	Usage:   "Postgres connection string",
	Value:   "postgres://localhost:5432/claroz",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var ListenAddr = &cli.StringFlag{
	Name:    "listen-addr",
	Usage:   "Address the API server listens on",
	Value:   ":8080",
	Sources: cli.EnvVars("LISTEN_ADDR"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Address the Prometheus metrics server listens on",
	Value:   ":9090",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var IPFSAPIURL = &cli.StringFlag{
	Name:    "ipfs-api-url",
	Usage:   "Base URL of the IPFS HTTP API",
	Value:   "http://localhost:5001/api/v0",
	Sources: cli.EnvVars("IPFS_API_URL"),
}

var IPFSGatewayURL = &cli.StringFlag{
	Name:    "ipfs-gateway-url",
	Usage:   "Base URL of the public IPFS gateway",
	Value:   "http://localhost:8080/ipfs",
	Sources: cli.EnvVars("IPFS_GATEWAY_URL"),
}

var MediaDir = &cli.StringFlag{
	Name:    "media-dir",
	Usage:   "Directory for advisory local copies of staged media",
	Value:   "./media",
	Sources: cli.EnvVars("MEDIA_DIR"),
}

var FeedPageSize = &cli.IntFlag{
	Name:  "feed-page-size",
	Usage: "Number of items per feed page",
	Value: 10,
}

var FederationLimit = &cli.IntFlag{
	Name:  "federation-limit",
	Usage: "Posts fetched per remote target per feed request",
	Value: 10,
}

var FederationWorkers = &cli.IntFlag{
	Name:  "federation-workers",
	Usage: "Concurrent remote fetches per feed request",
	Value: 4,
}

var FederationTimeout = &cli.DurationFlag{
	Name:  "federation-timeout",
	Usage: "Per-call timeout for remote fetches",
	Value: 5 * time.Second,
}
