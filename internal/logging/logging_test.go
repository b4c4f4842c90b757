package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agenthands/routegraph/internal/config"
)

func TestNew(t *testing.T) {
	l, err := New(config.LogConfig{Level: "DEBUG", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestDriverLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dl := DriverLogger(zap.New(core))

	dl.Infof("pool", "1", "opened %d connections", 2)
	dl.Warnf("router", "2", "stale table")
	dl.Error("bolt5", "3", errors.New("reset by peer"))
	dl.Debugf("pool", "1", "filtered out")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "opened 2 connections", entries[0].Message)
	assert.Equal(t, "neo4j", entries[0].LoggerName)
	assert.Equal(t, "pool", entries[0].ContextMap()["component"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "reset by peer", entries[2].ContextMap()["error"])
}
