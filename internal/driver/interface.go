package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type GraphDriver interface {
	ExecuteRead(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	ExecuteWrite(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	VerifyConnectivity(ctx context.Context) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
