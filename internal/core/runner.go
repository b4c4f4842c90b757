package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/core/model"
	"github.com/agenthands/routegraph/internal/driver"
)

// QueryParameters are bound to the $-placeholders of a query template.
type QueryParameters map[string]any

// DialFunc opens a driver for a graph config. driver.Open is the production
// implementation.
type DialFunc func(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (driver.GraphDriver, error)

var ErrConnectionClosed = errors.New("connection closed")

type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateQueryInFlight
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateQueryInFlight:
		return "query in flight"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Runner struct {
	Dial   DialFunc
	Logger *zap.Logger
	// UUIDGenerator assigns node uuids when seeding; uuid.NewString when nil.
	UUIDGenerator func() string
}

func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Dial: driver.Open, Logger: logger}
}

// SharedDial hands out d for every connection without letting connections
// close it, so a long-running process can reuse one pool.
func SharedDial(d driver.GraphDriver) DialFunc {
	return func(context.Context, config.GraphConfig, *zap.Logger) (driver.GraphDriver, error) {
		return driver.Shared(d), nil
	}
}

// Connection is a scoped handle on one graph driver. It is not safe for
// concurrent use; at most one query is in flight at a time.
type Connection struct {
	driver driver.GraphDriver
	state  State
	log    *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Connect opens and verifies a connection for cfg. The caller owns the
// returned Connection and must Close it.
func (r *Runner) Connect(ctx context.Context, cfg config.GraphConfig) (*Connection, error) {
	d, err := r.Dial(ctx, cfg, r.logger())
	if err != nil {
		var e *driver.Error
		if !errors.As(err, &e) {
			err = &driver.Error{Kind: driver.KindConnection, Op: "connect", Err: err}
		}
		return nil, err
	}
	return &Connection{driver: d, state: StateConnected, log: r.logger()}, nil
}

// WithConnection connects, hands the connection to fn and closes it on every
// exit path, including a panic in fn. A close failure is returned only when
// fn succeeded.
func (r *Runner) WithConnection(ctx context.Context, cfg config.GraphConfig, fn func(*Connection) error) (err error) {
	conn, err := r.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cerr := conn.Close(context.WithoutCancel(ctx))
		if cerr == nil {
			return
		}
		if err == nil {
			err = cerr
			return
		}
		r.logger().Warn("failed to close connection", zap.Error(cerr))
	}()

	return fn(conn)
}

// Lookup returns the addresses of every interface routed by a router in the
// data center at location.
func (r *Runner) Lookup(ctx context.Context, cfg config.GraphConfig, location string) ([]model.ResultRecord, error) {
	var records []model.ResultRecord
	err := r.WithConnection(ctx, cfg, func(conn *Connection) error {
		var err error
		records, err = conn.Run(ctx, driver.InterfaceIPsQuery, QueryParameters{"location": location})
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger().Debug("lookup finished", zap.String("location", location), zap.Int("records", len(records)))
	return records, nil
}

func (c *Connection) State() State {
	return c.state
}

// Run executes query as a read transaction and decodes the ip column of
// each row, in the order the server returned them.
func (c *Connection) Run(ctx context.Context, query string, params QueryParameters) ([]model.ResultRecord, error) {
	result, err := c.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return decodeRecords(result)
}

// RunWrite executes query as a write transaction.
func (c *Connection) RunWrite(ctx context.Context, query string, params QueryParameters) (neo4j.EagerResult, error) {
	if err := c.begin("run write"); err != nil {
		return neo4j.EagerResult{}, err
	}
	defer c.end()

	result, err := c.driver.ExecuteWrite(ctx, query, maps.Clone(params))
	if err != nil {
		return neo4j.EagerResult{}, asQueryError("run write", err)
	}
	return result, nil
}

func (c *Connection) BuildIndices(ctx context.Context) error {
	if err := c.begin("build indices"); err != nil {
		return err
	}
	defer c.end()

	return c.driver.BuildIndices(ctx)
}

func (c *Connection) Ping(ctx context.Context) error {
	if err := c.begin("ping"); err != nil {
		return err
	}
	defer c.end()

	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver. Only the first call has an effect.
func (c *Connection) Close(ctx context.Context) error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	return c.driver.Close(ctx)
}

func (c *Connection) read(ctx context.Context, query string, params QueryParameters) (neo4j.EagerResult, error) {
	if err := c.begin("run"); err != nil {
		return neo4j.EagerResult{}, err
	}
	defer c.end()

	c.log.Debug("running read query", zap.Strings("params", paramNames(params)))
	result, err := c.driver.ExecuteRead(ctx, query, maps.Clone(params))
	if err != nil {
		return neo4j.EagerResult{}, asQueryError("run", err)
	}
	return result, nil
}

// asQueryError keeps a kind assigned by the driver and treats anything else
// as a QueryError.
func asQueryError(op string, err error) error {
	var e *driver.Error
	if errors.As(err, &e) {
		return err
	}
	return &driver.Error{Kind: driver.KindQuery, Op: op, Err: err}
}

func (c *Connection) begin(op string) error {
	switch c.state {
	case StateConnected:
		c.state = StateQueryInFlight
		return nil
	case StateClosed:
		return &driver.Error{Kind: driver.KindQuery, Op: op, Err: ErrConnectionClosed}
	}
	return &driver.Error{Kind: driver.KindQuery, Op: op, Err: fmt.Errorf("connection is %s", c.state)}
}

func (c *Connection) end() {
	if c.state == StateQueryInFlight {
		c.state = StateConnected
	}
}

func decodeRecords(result neo4j.EagerResult) ([]model.ResultRecord, error) {
	records := make([]model.ResultRecord, 0, len(result.Records))
	for i, rec := range result.Records {
		ip, isNil, err := neo4j.GetRecordValue[string](rec, "ip")
		if err != nil {
			return nil, &driver.Error{Kind: driver.KindQuery, Op: "decode", Err: fmt.Errorf("record %d: %w", i, err)}
		}
		if isNil {
			return nil, &driver.Error{Kind: driver.KindQuery, Op: "decode", Err: fmt.Errorf("record %d: ip is null", i)}
		}
		records = append(records, model.ResultRecord{IP: ip})
	}
	return records, nil
}

func paramNames(params QueryParameters) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	return names
}

// WriteRecords prints one ip per line.
func WriteRecords(w io.Writer, records []model.ResultRecord) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.IP); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}
