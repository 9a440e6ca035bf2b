package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends
const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	ListenAddress    string
	GraphQLEndpoint  string
	UserAgent        string
	RequestTimeout   time.Duration
	LogLevel         string
	LogFile          string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	CacheBackend       string
	CacheCapacity      int
	CachePurgeInterval time.Duration

	Postgres PostgresConfig
}

// PostgresConfig holds connection settings for the shared cache backend
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string. Values are quoted so that empty
// or space-containing settings survive parsing.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s port=%s host=%s sslmode=disable",
		quoteDSN(p.User), quoteDSN(p.Password), quoteDSN(p.Database), quoteDSN(p.Port), quoteDSN(p.Host),
	)
}

func quoteDSN(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LISTEN_ADDRESS", ":8080")
	v.SetDefault("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql")
	v.SetDefault("USER_AGENT", "contribgraph")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("HTTP_READ_TIMEOUT", "5s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	v.SetDefault("HTTP_IDLE_TIMEOUT", "60s")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_CAPACITY", 1000)
	v.SetDefault("CACHE_PURGE_INTERVAL", "10m")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DB", "contribgraph")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
}

// Load loads configuration from environment variables and, when present,
// from configFile. A missing file is not an error.
func (c *Config) Load(configFile string) error {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	c.ListenAddress = v.GetString("LISTEN_ADDRESS")
	c.UserAgent = v.GetString("USER_AGENT")
	c.LogLevel = v.GetString("LOG_LEVEL")
	c.LogFile = v.GetString("LOG_FILE")

	c.GraphQLEndpoint = v.GetString("GITHUB_GRAPHQL_URL")
	endpoint, err := url.Parse(c.GraphQLEndpoint)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return fmt.Errorf("invalid GITHUB_GRAPHQL_URL %q", c.GraphQLEndpoint)
	}

	durations := []struct {
		key  string
		dest *time.Duration
	}{
		{"REQUEST_TIMEOUT", &c.RequestTimeout},
		{"HTTP_READ_TIMEOUT", &c.HTTPReadTimeout},
		{"HTTP_WRITE_TIMEOUT", &c.HTTPWriteTimeout},
		{"HTTP_IDLE_TIMEOUT", &c.HTTPIdleTimeout},
		{"CACHE_PURGE_INTERVAL", &c.CachePurgeInterval},
		{"DB_CONN_MAX_LIFETIME", &c.Postgres.ConnMaxLifetime},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return fmt.Errorf("invalid %s format: %w", d.key, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s must be positive", d.key)
		}
		*d.dest = parsed
	}

	c.CacheBackend = v.GetString("CACHE_BACKEND")
	if c.CacheBackend != CacheBackendMemory && c.CacheBackend != CacheBackendPostgres {
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendPostgres, c.CacheBackend)
	}

	c.CacheCapacity = v.GetInt("CACHE_CAPACITY")
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive")
	}

	c.Postgres = PostgresConfig{
		Host:            v.GetString("POSTGRES_HOST"),
		Port:            v.GetString("POSTGRES_PORT"),
		User:            v.GetString("POSTGRES_USER"),
		Password:        v.GetString("POSTGRES_PASSWORD"),
		Database:        v.GetString("POSTGRES_DB"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: c.Postgres.ConnMaxLifetime,
	}

	return nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
