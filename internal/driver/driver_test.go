package driver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "syntax error",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input"},
			want: ErrQuery,
		},
		{
			name: "unauthorized",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "bad credentials"},
			want: ErrConnection,
		},
		{
			name: "unknown database",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Database.DatabaseNotFound", Msg: "no such db"},
			want: ErrConnection,
		},
		{
			name: "deadlock",
			err:  &neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected", Msg: "deadlock"},
			want: ErrTransient,
		},
		{
			name: "wrapped neo4j error",
			err:  fmt.Errorf("run: %w", &neo4j.Neo4jError{Code: "Neo.TransientError.General.MemoryPoolOutOfMemoryError", Msg: "oom"}),
			want: ErrTransient,
		},
		{
			name: "connection lost mid-query",
			err:  &neo4j.ConnectivityError{Inner: errors.New("connection reset by peer")},
			want: ErrConnection,
		},
		{
			name: "wrapped connectivity error",
			err:  fmt.Errorf("run: %w", &neo4j.ConnectivityError{Inner: errors.New("i/o timeout")}),
			want: ErrConnection,
		},
		{
			name: "retry budget exhausted",
			err:  &neo4j.TransactionExecutionLimit{Cause: "timeout (exceeded max retry time: 30s)"},
			want: ErrTransient,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ErrQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyQuery("execute read", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want == ErrTransient, IsRetryable(err))

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "execute read", e.Op)
		})
	}
}

func TestClassify_KeepsExistingKind(t *testing.T) {
	orig := &Error{Kind: KindTransient, Op: "inner", Err: errors.New("reset")}

	assert.Same(t, orig, classifyQuery("outer", orig))
	assert.Same(t, orig, connectionError("outer", orig))
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindConnection, Op: "open", Err: errors.New("refused")}
	assert.Equal(t, "open: connection error: refused", err.Error())
	assert.NotErrorIs(t, err, ErrQuery)
	assert.Equal(t, "unknown error", Kind(0).String())
}

func TestDriverOptions(t *testing.T) {
	cfg := config.Default().Graph
	cfg.MaxConnectionPoolSize = 7
	cfg.ConnectionTimeout = "3s"
	cfg.MaxTransactionRetryTime = "9s"

	c := &neo4j.Config{}
	driverOptions(cfg, zap.NewNop())(c)

	assert.Equal(t, 7, c.MaxConnectionPoolSize)
	assert.Equal(t, 3*time.Second, c.ConnectionAcquisitionTimeout)
	assert.Equal(t, 3*time.Second, c.SocketConnectTimeout)
	assert.Equal(t, 9*time.Second, c.MaxTransactionRetryTime)
	assert.Equal(t, userAgent, c.UserAgent)
	assert.NotNil(t, c.Log)
}

func TestDriverOptions_ZeroKeepsDriverDefaults(t *testing.T) {
	cfg := config.Default().Graph
	cfg.MaxConnectionPoolSize = 0
	cfg.ConnectionTimeout = ""
	cfg.MaxTransactionRetryTime = ""

	c := &neo4j.Config{MaxConnectionPoolSize: 100, MaxTransactionRetryTime: 30 * time.Second}
	driverOptions(cfg, nil)(c)

	assert.Equal(t, 100, c.MaxConnectionPoolSize)
	assert.Equal(t, 30*time.Second, c.MaxTransactionRetryTime)
	assert.Nil(t, c.Log)
}

func TestTxOptions(t *testing.T) {
	cfg := config.Default().Graph
	cfg.QueryTimeout = "2s"
	d := &neo4jDriver{cfg: cfg, log: zap.NewNop()}

	tc := &neo4j.TransactionConfig{}
	for _, opt := range d.txOptions() {
		opt(tc)
	}
	assert.Equal(t, 2*time.Second, tc.Timeout)
	assert.Equal(t, "routegraph", tc.Metadata["app"])
	assert.NotEmpty(t, tc.Metadata["run_id"])

	// each transaction gets its own run id
	other := &neo4j.TransactionConfig{}
	for _, opt := range d.txOptions() {
		opt(other)
	}
	assert.NotEqual(t, tc.Metadata["run_id"], other.Metadata["run_id"])
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := config.Default().Graph
	cfg.URI = ""

	d, err := Open(context.Background(), cfg, nil)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "uri cannot be empty")
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	cfg := config.Default().Graph
	cfg.URI = "http://localhost:7474"

	d, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		mode string
		want GraphDriver
	}{
		{mode: config.ModeSession, want: &SessionDriver{}},
		{mode: config.ModeQuery, want: &QueryDriver{}},
		{mode: "", want: &QueryDriver{}},
	}

	for _, tt := range tests {
		cfg := config.Default().Graph
		cfg.Mode = tt.mode

		d := newAdapter(nil, cfg, zap.NewNop())
		assert.IsType(t, tt.want, d, "mode %q", tt.mode)
	}
}

// unreachableAdapter points a real driver at a closed local port. Creating
// the driver does not dial, so only the first statement fails.
func unreachableAdapter(t *testing.T, mode string) GraphDriver {
	t.Helper()
	cfg := config.Default().Graph
	cfg.URI = "bolt://127.0.0.1:1"
	cfg.Mode = mode
	cfg.ConnectionTimeout = "1s"
	cfg.MaxTransactionRetryTime = "10ms"

	logger := zap.NewNop()
	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), driverOptions(cfg, logger))
	require.NoError(t, err)

	adapter := newAdapter(d, cfg, logger)
	t.Cleanup(func() { _ = adapter.Close(context.Background()) })
	return adapter
}

func TestAdapters_UnreachableServer(t *testing.T) {
	for _, mode := range []string{config.ModeQuery, config.ModeSession} {
		t.Run(mode, func(t *testing.T) {
			d := unreachableAdapter(t, mode)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			_, err := d.ExecuteRead(ctx, "RETURN 1 AS n", nil)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "execute read", e.Op)
			assert.NotEqual(t, KindQuery, e.Kind)

			_, err = d.ExecuteWrite(ctx, "RETURN 1 AS n", nil)
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "execute write", e.Op)

			assert.ErrorIs(t, d.VerifyConnectivity(ctx), ErrConnection)
		})
	}
}

type closeCounter struct {
	GraphDriver
	closed int
}

func (c *closeCounter) Close(context.Context) error {
	c.closed++
	return nil
}

func TestShared(t *testing.T) {
	inner := &closeCounter{}
	d := Shared(inner)

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 0, inner.closed)
}
