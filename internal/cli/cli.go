// Package cli implements the pedigree command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/buildinfo"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/graph"
	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/record/mongostore"
	"github.com/matzehuels/pedigree/pkg/record/sqlstore"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pedigree"

	// storeSource is the <records> argument that selects the configured store.
	storeSource = "store:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "Pedigree lays out and renders ancestry graphs",
		Long:          `Pedigree builds the lineage of one individual from a flat list of records, assigns generations, groups childless offspring and renders the result as an interactive node-link graph.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/pedigree/config.toml)")

	// Register all subcommands
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "store", cfg.Store.Driver, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner reading records from source: a record
// file, a directory of per-owner files, or "store:" for the configured store.
func (c *CLI) newRunner(ctx context.Context, source string, noCache bool) (*pipeline.Runner[record.Attributes], error) {
	store, err := c.openStore(ctx, source)
	if err != nil {
		return nil, err
	}
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	r := pipeline.NewRunner[record.Attributes](store, cc, nil, c.Logger)
	r.Options = c.Config.Layout
	r.Options.Logger = c.Logger
	return r, nil
}

// openStore opens the record store behind source.
func (c *CLI) openStore(ctx context.Context, source string) (record.Store[record.Attributes], error) {
	if source != storeSource {
		return graph.NewFileStore(source), nil
	}

	cfg := c.Config.Store
	switch cfg.Driver {
	case storeSQLite:
		return sqlstore.Open[record.Attributes](ctx, sqlstore.DriverSQLite, cfg.DSN)
	case storePostgres:
		return sqlstore.Open[record.Attributes](ctx, sqlstore.DriverPostgres, cfg.DSN)
	case storeMongo:
		return mongostore.Open[record.Attributes](ctx, mongostore.Options{URI: cfg.DSN, Database: cfg.Database})
	default:
		return graph.NewFileStore(cfg.DSN), nil
	}
}

// newCache creates the configured cache, instrumented for metrics.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == cacheNone {
		return cache.NewNullCache(), nil
	}

	if cfg.Backend == cacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	}

	dir, err := c.fileCacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc), nil
}

// owner is the record owner used for the runner's store.
func (c *CLI) owner() string {
	return c.Config.Store.Owner
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pedigree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
