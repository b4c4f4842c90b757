package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QueryDriver runs every statement through the driver-level neo4j.ExecuteQuery
// API, letting the driver manage sessions and retries.
type QueryDriver struct {
	neo4jDriver
}

func (d *QueryDriver) ExecuteRead(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	return d.execute(ctx, "execute read", query, params, neo4j.ExecuteQueryWithReadersRouting())
}

func (d *QueryDriver) ExecuteWrite(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	return d.execute(ctx, "execute write", query, params, neo4j.ExecuteQueryWithWritersRouting())
}

func (d *QueryDriver) BuildIndices(ctx context.Context) error {
	return buildIndices(ctx, d.ExecuteWrite, d.log)
}

func (d *QueryDriver) execute(ctx context.Context, op, query string, params map[string]any, routing neo4j.ExecuteQueryConfigurationOption) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(d.cfg.Database),
		routing,
		neo4j.ExecuteQueryWithTransactionConfig(d.txOptions()...),
	)
	if err != nil {
		return neo4j.EagerResult{}, classifyQuery(op, err)
	}
	return *result, nil
}
