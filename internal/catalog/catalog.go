// Package catalog holds the per-network reason-code catalog, the rebuttal
// strategy table and the issuer/BIN directory. All three are immutable once
// built and are published together as a Snapshot.
package catalog

import (
	"fmt"
	"sort"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Catalog maps network to code to ReasonCodeEntry and keeps file order.
type Catalog struct {
	networks []string
	tables   map[string]*networkTable
}

type networkTable struct {
	order   []string
	entries map[string]domain.ReasonCodeEntry
}

// New builds a catalog from ordered entry lists keyed by network. Network
// names are lower-cased; within a network the first entry for a code wins.
func New(entries map[string][]domain.ReasonCodeEntry, networks ...string) *Catalog {
	if len(networks) == 0 {
		networks = domain.DefaultNetworks
	}

	c := &Catalog{tables: make(map[string]*networkTable)}
	seen := make(map[string]bool)
	for _, n := range networks {
		n = domain.NormalizeNetwork(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		c.networks = append(c.networks, n)
		c.tables[n] = &networkTable{entries: make(map[string]domain.ReasonCodeEntry)}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawNetwork := range keys {
		list := entries[rawNetwork]
		network := domain.NormalizeNetwork(rawNetwork)
		table, ok := c.tables[network]
		if !ok {
			c.networks = append(c.networks, network)
			table = &networkTable{entries: make(map[string]domain.ReasonCodeEntry)}
			c.tables[network] = table
		}
		for _, e := range list {
			if e.Code == "" {
				continue
			}
			if _, dup := table.entries[e.Code]; dup {
				continue
			}
			e = e.Clone()
			e.Network = network
			table.order = append(table.order, e.Code)
			table.entries[e.Code] = e
		}
	}

	return c
}

// Networks returns the configured networks in priority order.
func (c *Catalog) Networks() []string {
	out := make([]string, len(c.networks))
	copy(out, c.networks)
	return out
}

// Get returns the entry for (network, code) or an error wrapping
// domain.ErrNotFound.
func (c *Catalog) Get(network, code string) (domain.ReasonCodeEntry, error) {
	network = domain.NormalizeNetwork(network)
	if table, ok := c.tables[network]; ok {
		if e, ok := table.entries[code]; ok {
			return e.Clone(), nil
		}
	}
	return domain.ReasonCodeEntry{}, fmt.Errorf("reason code %s/%s: %w", network, code, domain.ErrNotFound)
}

// Entries returns a network's entries in catalog order. Unknown networks
// yield an empty slice.
func (c *Catalog) Entries(network string) []domain.ReasonCodeEntry {
	table, ok := c.tables[domain.NormalizeNetwork(network)]
	if !ok {
		return []domain.ReasonCodeEntry{}
	}
	out := make([]domain.ReasonCodeEntry, 0, len(table.order))
	for _, code := range table.order {
		out = append(out, table.entries[code].Clone())
	}
	return out
}

// AllForNetwork returns a copy of a network's code mapping, empty for
// unknown networks.
func (c *Catalog) AllForNetwork(network string) map[string]domain.ReasonCodeEntry {
	out := make(map[string]domain.ReasonCodeEntry)
	table, ok := c.tables[domain.NormalizeNetwork(network)]
	if !ok {
		return out
	}
	for code, e := range table.entries {
		out[code] = e.Clone()
	}
	return out
}

// Len returns the number of entries loaded for a network.
func (c *Catalog) Len(network string) int {
	if table, ok := c.tables[domain.NormalizeNetwork(network)]; ok {
		return len(table.order)
	}
	return 0
}

// Strategies is the rebuttal strategy table keyed by (network, code).
type Strategies struct {
	table map[string]map[string]domain.RebuttalStrategy
}

// NewStrategies builds a strategy table.
func NewStrategies(table map[string]map[string]domain.RebuttalStrategy) *Strategies {
	s := &Strategies{table: make(map[string]map[string]domain.RebuttalStrategy)}
	for network, codes := range table {
		network = domain.NormalizeNetwork(network)
		if s.table[network] == nil {
			s.table[network] = make(map[string]domain.RebuttalStrategy)
		}
		for code, strategy := range codes {
			s.table[network][code] = strategy.Clone()
		}
	}
	return s
}

// Strategy returns the strategy for (network, code) or an error wrapping
// domain.ErrNotFound.
func (s *Strategies) Strategy(network, code string) (domain.RebuttalStrategy, error) {
	network = domain.NormalizeNetwork(network)
	if strategy, ok := s.table[network][code]; ok {
		return strategy.Clone(), nil
	}
	return domain.RebuttalStrategy{}, fmt.Errorf("strategy %s/%s: %w", network, code, domain.ErrNotFound)
}
