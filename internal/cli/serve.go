package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/internal/api"
	"github.com/matzehuels/pedigree/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	sessionTTL time.Duration
	noCache    bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive pedigree sessions over HTTP",
		Long: `Serve exposes the pedigree engine to a rendering client. Records come from
the store configured in config.toml; positions are kept in the configured cache.`,
		Example: `  pedigree serve
  pedigree serve --addr 127.0.0.1:9000 --session-ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, "+defaultAddr+")")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "idle time before a session expires (default 30m)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "keep positions in memory only")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	runner, err := c.newRunner(ctx, storeSource, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	observability.NewPrometheusHooks(prometheus.DefaultRegisterer).Register()
	defer observability.Reset()

	srv := api.New(runner, api.Options{
		DefaultOwner: c.owner(),
		SessionTTL:   opts.sessionTTL,
		Logger:       c.Logger,
	})

	printKeyValue("Store", c.Config.Store.Driver)
	printKeyValue("Cache", c.Config.Cache.Backend)
	printInfo("Serving on %s", addr)
	return srv.ListenAndServe(ctx, addr, c.Config.Server.ShutdownTimeout)
}
