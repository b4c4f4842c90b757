package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	ModeQuery   = "query"
	ModeSession = "session"
)

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	// Mode selects the driver adapter: "query" or "session".
	Mode string `toml:"mode"`

	MaxConnectionPoolSize   int    `toml:"max_connection_pool_size"`
	ConnectionTimeout       string `toml:"connection_timeout"`
	MaxTransactionRetryTime string `toml:"max_transaction_retry_time"`
	QueryTimeout            string `toml:"query_timeout"`
}

type LookupConfig struct {
	Location string `toml:"location"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Graph  GraphConfig  `toml:"graph"`
	Lookup LookupConfig `toml:"lookup"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:                     "bolt://localhost:7687",
			User:                    "neo4j",
			Database:                "neo4j",
			Mode:                    ModeQuery,
			MaxConnectionPoolSize:   10,
			ConnectionTimeout:       "30s",
			MaxTransactionRetryTime: "15s",
			QueryTimeout:            "30s",
		},
		Lookup: LookupConfig{Location: "Iceland"},
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a TOML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when no path is given.
// A named file that cannot be read is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Resolve loads path (or defaults), applies environment overrides and
// validates the result. An empty path falls back to $CONFIG_PATH.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() error {
	overrides := map[string]*string{
		"GRAPH_URI":      &c.Graph.URI,
		"GRAPH_USER":     &c.Graph.User,
		"GRAPH_PASSWORD": &c.Graph.Password,
		"GRAPH_DATABASE": &c.Graph.Database,
		"GRAPH_MODE":     &c.Graph.Mode,
		"QUERY_TIMEOUT":  &c.Graph.QueryTimeout,
		"LOCATION":       &c.Lookup.Location,
		"PORT":           &c.Server.Port,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("GRAPH_MAX_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRAPH_MAX_POOL_SIZE value %q: %w", v, err)
		}
		c.Graph.MaxConnectionPoolSize = n
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}

func (g GraphConfig) Validate() error {
	if g.URI == "" {
		return fmt.Errorf("uri cannot be empty")
	}
	if g.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	switch g.Mode {
	case ModeQuery, ModeSession:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", g.Mode, ModeQuery, ModeSession)
	}
	if g.MaxConnectionPoolSize < 0 {
		return fmt.Errorf("max_connection_pool_size must not be negative")
	}
	for name, v := range map[string]string{
		"connection_timeout":         g.ConnectionTimeout,
		"max_transaction_retry_time": g.MaxTransactionRetryTime,
		"query_timeout":              g.QueryTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (g GraphConfig) ConnectionTimeoutDuration() time.Duration {
	d, _ := parseDuration(g.ConnectionTimeout)
	return d
}

func (g GraphConfig) MaxTransactionRetryDuration() time.Duration {
	d, _ := parseDuration(g.MaxTransactionRetryTime)
	return d
}

func (g GraphConfig) QueryTimeoutDuration() time.Duration {
	d, _ := parseDuration(g.QueryTimeout)
	return d
}

// parseDuration treats an empty string as zero, meaning "driver default".
func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", v)
	}
	return d, nil
}
