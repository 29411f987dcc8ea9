package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// Store drivers.
const (
	storeFile     = "file"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

const (
	defaultOwner = "default"
	defaultAddr  = ":8080"
)

// Config is the contents of config.toml. Flags override it.
type Config struct {
	Layout pipeline.Options `toml:"layout"`
	Store  StoreConfig      `toml:"store"`
	Cache  CacheConfig      `toml:"cache"`
	Server ServerConfig     `toml:"server"`
}

// StoreConfig selects the record store used by "store:" sources and serve.
type StoreConfig struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Owner    string `toml:"owner"`
	Database string `toml:"database"`
}

// CacheConfig selects where position snapshots and artifacts are cached.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Store:  StoreConfig{Driver: storeFile, Owner: defaultOwner},
		Cache:  CacheConfig{Backend: cacheFile, Prefix: appName + ":"},
		Server: ServerConfig{Addr: defaultAddr, ShutdownTimeout: 10 * time.Second},
	}
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error unless the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, pederrors.Wrap(pederrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case storeFile, storeSQLite, storePostgres, storeMongo:
	default:
		return pederrors.New(pederrors.ErrCodeInvalidConfig, "unknown store driver %q", c.Store.Driver)
	}
	switch c.Cache.Backend {
	case cacheFile, cacheNone:
	case cacheRedis:
		if c.Cache.RedisURL == "" {
			return pederrors.New(pederrors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
		}
	default:
		return pederrors.New(pederrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Store.Owner == "" {
		c.Store.Owner = defaultOwner
	}
	return c.Layout.ValidateAndSetDefaults()
}

// configPath returns the config file path using XDG standard
// (~/.config/pedigree/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
