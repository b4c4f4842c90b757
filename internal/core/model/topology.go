package model

import (
	"fmt"
	"net/netip"
)

// Topology is the seed format for the network graph:
// (DataCenter)-[:CONTAINS]->(Router)-[:ROUTES]->(Interface).
type Topology struct {
	DataCenters []DataCenter `toml:"datacenters" json:"datacenters"`
}

type DataCenter struct {
	Location string   `toml:"location" json:"location"`
	Routers  []Router `toml:"routers" json:"routers"`
}

type Router struct {
	Name       string   `toml:"name" json:"name"`
	Interfaces []string `toml:"interfaces" json:"interfaces"`
}

// Validate checks the natural keys used by the MERGE statements. Router names
// and interface addresses are global keys, so they must be unique across the
// whole topology.
func (t Topology) Validate() error {
	locations := map[string]bool{}
	routers := map[string]bool{}
	ips := map[netip.Addr]bool{}

	for i, dc := range t.DataCenters {
		if dc.Location == "" {
			return fmt.Errorf("datacenter %d: location cannot be empty", i)
		}
		if locations[dc.Location] {
			return fmt.Errorf("datacenter %q: duplicate location", dc.Location)
		}
		locations[dc.Location] = true

		for _, r := range dc.Routers {
			if r.Name == "" {
				return fmt.Errorf("datacenter %q: router name cannot be empty", dc.Location)
			}
			if routers[r.Name] {
				return fmt.Errorf("router %q: duplicate name", r.Name)
			}
			routers[r.Name] = true

			for _, ip := range r.Interfaces {
				addr, err := netip.ParseAddr(ip)
				if err != nil {
					return fmt.Errorf("router %q: invalid interface address %q: %w", r.Name, ip, err)
				}
				if ips[addr] {
					return fmt.Errorf("router %q: duplicate interface address %q", r.Name, ip)
				}
				ips[addr] = true
			}
		}
	}
	return nil
}
