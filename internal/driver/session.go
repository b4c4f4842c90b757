package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// SessionDriver opens a session per call and runs the statement inside a
// managed read or write transaction.
type SessionDriver struct {
	neo4jDriver
}

func (d *SessionDriver) ExecuteRead(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	return d.execute(ctx, "execute read", neo4j.AccessModeRead, query, params)
}

func (d *SessionDriver) ExecuteWrite(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	return d.execute(ctx, "execute write", neo4j.AccessModeWrite, query, params)
}

func (d *SessionDriver) BuildIndices(ctx context.Context) error {
	return buildIndices(ctx, d.ExecuteWrite, d.log)
}

func (d *SessionDriver) execute(ctx context.Context, op string, mode neo4j.AccessMode, query string, params map[string]any) (neo4j.EagerResult, error) {
	session := d.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: d.cfg.Database,
		AccessMode:   mode,
	})
	defer func() {
		if err := session.Close(ctx); err != nil {
			d.log.Warn("failed to close session", zap.Error(err))
		}
	}()

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, query, params)
	}

	var (
		res any
		err error
	)
	if mode == neo4j.AccessModeRead {
		res, err = session.ExecuteRead(ctx, work, d.txOptions()...)
	} else {
		res, err = session.ExecuteWrite(ctx, work, d.txOptions()...)
	}
	if err != nil {
		return neo4j.EagerResult{}, classifyQuery(op, err)
	}

	result, ok := res.(neo4j.EagerResult)
	if !ok {
		return neo4j.EagerResult{}, classifyQuery(op, fmt.Errorf("unexpected transaction result %T", res))
	}
	return result, nil
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (neo4j.EagerResult, error) {
	r, err := tx.Run(ctx, query, params)
	if err != nil {
		return neo4j.EagerResult{}, err
	}

	keys, err := r.Keys()
	if err != nil {
		return neo4j.EagerResult{}, err
	}

	records, err := r.Collect(ctx)
	if err != nil {
		return neo4j.EagerResult{}, err
	}

	summary, err := r.Consume(ctx)
	if err != nil {
		return neo4j.EagerResult{}, err
	}

	return neo4j.EagerResult{Keys: keys, Records: records, Summary: summary}, nil
}
