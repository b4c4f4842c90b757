package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/driver"
)

type MockDriver struct {
	QueryExecuted string
	QueryParams   map[string]any
	MockResult    neo4j.EagerResult
	Err           error
	WriteErr      error
	CloseErr      error

	// OnRead runs inside ExecuteRead, before the result is returned.
	OnRead func()
	// OnWrite, when set, decides the error of the n-th write (from 1).
	OnWrite func(n int) error

	ReadCalls    int
	WriteQueries []string
	WriteParams  []map[string]any
	IndexCalls   int
	CloseCalls   int
}

func (m *MockDriver) ExecuteRead(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.ReadCalls++
	m.QueryExecuted = query
	m.QueryParams = params
	if m.OnRead != nil {
		m.OnRead()
	}
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) ExecuteWrite(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.WriteQueries = append(m.WriteQueries, query)
	m.WriteParams = append(m.WriteParams, params)
	if m.OnWrite != nil {
		if err := m.OnWrite(len(m.WriteQueries)); err != nil {
			return neo4j.EagerResult{}, err
		}
	}
	if m.WriteErr != nil {
		return neo4j.EagerResult{}, m.WriteErr
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) VerifyConnectivity(ctx context.Context) error {
	return nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.IndexCalls++
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.CloseCalls++
	return m.CloseErr
}

// newMockRunner returns a Runner whose Dial hands out d and records the
// config it was called with.
func newMockRunner(d *MockDriver, dialed *config.GraphConfig) *Runner {
	return &Runner{
		Logger: zap.NewNop(),
		Dial: func(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (driver.GraphDriver, error) {
			if dialed != nil {
				*dialed = cfg
			}
			return d, nil
		},
	}
}

func ipResult(ips ...any) neo4j.EagerResult {
	records := make([]*neo4j.Record, 0, len(ips))
	for _, ip := range ips {
		records = append(records, &neo4j.Record{
			Keys:   []string{"ip"},
			Values: []any{ip},
		})
	}
	return neo4j.EagerResult{Keys: []string{"ip"}, Records: records}
}
