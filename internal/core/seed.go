package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/core/model"
	"github.com/agenthands/routegraph/internal/driver"
)

type SeedStats struct {
	DataCenters int `json:"datacenters"`
	Routers     int `json:"routers"`
	Interfaces  int `json:"interfaces"`
}

func LoadTopology(path string) (*model.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file '%s': %w", path, err)
	}

	var topo model.Topology
	if err := toml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse topology TOML: %w", err)
	}
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	return &topo, nil
}

// Seed merges topo into the graph. Nodes are keyed by location, router name
// and interface address, so seeding the same topology twice is a no-op.
func (r *Runner) Seed(ctx context.Context, cfg config.GraphConfig, topo model.Topology) (SeedStats, error) {
	var stats SeedStats
	if err := topo.Validate(); err != nil {
		return stats, fmt.Errorf("invalid topology: %w", err)
	}

	uuidGen := r.UUIDGenerator
	if uuidGen == nil {
		uuidGen = uuid.NewString
	}

	err := r.WithConnection(ctx, cfg, func(conn *Connection) error {
		now := time.Now().UTC()

		for _, dc := range topo.DataCenters {
			params, routers, ifaces := dataCenterParams(dc, uuidGen, now)
			if _, err := conn.RunWrite(ctx, driver.MergeDataCenterQuery, params); err != nil {
				return fmt.Errorf("failed to save datacenter %q: %w", dc.Location, err)
			}
			stats.DataCenters++
			stats.Routers += routers
			stats.Interfaces += ifaces
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	r.logger().Info("topology seeded",
		zap.Int("datacenters", stats.DataCenters),
		zap.Int("routers", stats.Routers),
		zap.Int("interfaces", stats.Interfaces))
	return stats, nil
}

// dataCenterParams flattens dc into the parameters of MergeDataCenterQuery so
// the whole data center is written in one transaction.
func dataCenterParams(dc model.DataCenter, uuidGen func() string, now time.Time) (QueryParameters, int, int) {
	params := QueryParameters{
		"location":   dc.Location,
		"uuid":       uuidGen(),
		"created_at": now,
	}

	var interfaces int
	routers := make([]any, 0, len(dc.Routers))
	for _, router := range dc.Routers {
		routerID := uuidGen()
		ifaces := make([]any, 0, len(router.Interfaces))
		for _, ip := range router.Interfaces {
			ifaces = append(ifaces, map[string]any{"ip": ip, "uuid": uuidGen()})
		}
		interfaces += len(ifaces)
		routers = append(routers, map[string]any{
			"name":       router.Name,
			"uuid":       routerID,
			"interfaces": ifaces,
		})
	}
	params["routers"] = routers
	return params, len(routers), interfaces
}

// BuildIndices ensures the lookup indices exist.
func (r *Runner) BuildIndices(ctx context.Context, cfg config.GraphConfig) error {
	return r.WithConnection(ctx, cfg, func(conn *Connection) error {
		return conn.BuildIndices(ctx)
	})
}
