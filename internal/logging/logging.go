package logging

import (
	"fmt"
	"strings"

	neo4jlog "github.com/neo4j/neo4j-go-driver/v5/neo4j/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agenthands/routegraph/internal/config"
)

// New builds a zap logger writing to stderr. Stdout is left to command output.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	zc := zap.NewProductionConfig()
	switch cfg.Format {
	case "", "json":
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

type driverLogger struct {
	log *zap.Logger
}

// DriverLogger routes the Neo4j driver's internal log into zap.
func DriverLogger(l *zap.Logger) neo4jlog.Logger {
	return &driverLogger{log: l.Named("neo4j")}
}

func (d *driverLogger) Error(name, id string, err error) {
	d.log.Error("driver error", zap.String("component", name), zap.String("id", id), zap.Error(err))
}

func (d *driverLogger) Warnf(name, id string, msg string, args ...any) {
	d.log.Warn(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}

func (d *driverLogger) Infof(name, id string, msg string, args ...any) {
	d.log.Info(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}

func (d *driverLogger) Debugf(name, id string, msg string, args ...any) {
	if !d.log.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	d.log.Debug(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}
