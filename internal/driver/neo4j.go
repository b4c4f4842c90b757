package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/logging"
)

const userAgent = "routegraph/1.0"

type writeFunc func(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)

// neo4jDriver holds what both adapters share: the pooled driver, its
// settings and the logger.
type neo4jDriver struct {
	Driver neo4j.DriverWithContext
	cfg    config.GraphConfig
	log    *zap.Logger
}

// Open creates a driver for cfg, checks that the server is reachable and
// returns the adapter selected by cfg.Mode.
func Open(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (GraphDriver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, connectionError("open", fmt.Errorf("invalid graph config: %w", err))
	}

	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), driverOptions(cfg, logger))
	if err != nil {
		return nil, connectionError("open", err)
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		if cerr := d.Close(ctx); cerr != nil {
			logger.Warn("failed to close driver after connectivity check", zap.Error(cerr))
		}
		return nil, connectionError("verify connectivity", err)
	}

	logger.Info("connected to graph database",
		zap.String("uri", cfg.URI),
		zap.String("database", cfg.Database),
		zap.String("mode", cfg.Mode))

	return newAdapter(d, cfg, logger), nil
}

// newAdapter wraps d in the adapter named by cfg.Mode. An empty mode means
// the query adapter.
func newAdapter(d neo4j.DriverWithContext, cfg config.GraphConfig, logger *zap.Logger) GraphDriver {
	base := neo4jDriver{Driver: d, cfg: cfg, log: logger}
	if cfg.Mode == config.ModeSession {
		return &SessionDriver{neo4jDriver: base}
	}
	return &QueryDriver{neo4jDriver: base}
}

func driverOptions(cfg config.GraphConfig, logger *zap.Logger) func(*neo4j.Config) {
	return func(c *neo4j.Config) {
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		if t := cfg.ConnectionTimeoutDuration(); t > 0 {
			c.ConnectionAcquisitionTimeout = t
			c.SocketConnectTimeout = t
		}
		if t := cfg.MaxTransactionRetryDuration(); t > 0 {
			c.MaxTransactionRetryTime = t
		}
		if logger != nil {
			c.Log = logging.DriverLogger(logger)
		}
		c.UserAgent = userAgent
	}
}

// txOptions tags every transaction with a run id so it can be found in the
// server's query log.
func (d *neo4jDriver) txOptions() []func(*neo4j.TransactionConfig) {
	opts := []func(*neo4j.TransactionConfig){
		neo4j.WithTxMetadata(map[string]any{
			"app":    "routegraph",
			"run_id": uuid.NewString(),
		}),
	}
	if t := d.cfg.QueryTimeoutDuration(); t > 0 {
		opts = append(opts, neo4j.WithTxTimeout(t))
	}
	return opts
}

func (d *neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := d.Driver.VerifyConnectivity(ctx); err != nil {
		return connectionError("verify connectivity", err)
	}
	return nil
}

func (d *neo4jDriver) Close(ctx context.Context) error {
	if err := d.Driver.Close(ctx); err != nil {
		return connectionError("close", err)
	}
	d.log.Debug("graph driver closed")
	return nil
}

func buildIndices(ctx context.Context, write writeFunc, log *zap.Logger) error {
	for _, q := range indexQueries {
		if _, err := write(ctx, q, nil); err != nil {
			log.Warn("failed to create index", zap.String("query", q), zap.Error(err))
			continue
		}
		log.Debug("index ensured", zap.String("query", q))
	}
	return nil
}
