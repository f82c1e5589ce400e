package loadbalancer

import (
	"sync"

	"github.com/tair/freshsave/pkg/logger"
)

// RoundRobin cycles through a service's instances, skipping ones the health
// checker marked down. When every instance is down it keeps cycling through
// all of them rather than refusing traffic.
type RoundRobin struct {
	servers []string
	down    map[string]bool
	current int
	mu      sync.Mutex
}

// NewRoundRobin creates a new round-robin load balancer
func NewRoundRobin(servers []string) *RoundRobin {
	return &RoundRobin{
		servers: append([]string{}, servers...),
		down:    make(map[string]bool),
	}
}

// Next returns the next server in round-robin order, or "" for an empty pool.
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	n := len(rr.servers)
	if n == 0 {
		return ""
	}

	for i := 0; i < n; i++ {
		server := rr.servers[(rr.current+i)%n]
		if !rr.down[server] {
			rr.current = (rr.current + i + 1) % n
			return server
		}
	}

	server := rr.servers[rr.current]
	rr.current = (rr.current + 1) % n
	return server
}

// SetHealthy marks an instance up or down.
func (rr *RoundRobin) SetHealthy(server string, healthy bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.down[server] == !healthy {
		return
	}
	if healthy {
		delete(rr.down, server)
	} else {
		rr.down[server] = true
	}
	logger.Logger.Info().
		Str("server", server).
		Bool("healthy", healthy).
		Msg("Load balancer instance state changed")
}

// GetServers returns all configured servers
func (rr *RoundRobin) GetServers() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string{}, rr.servers...)
}

// GetStats returns load balancer statistics
func (rr *RoundRobin) GetStats() map[string]interface{} {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	down := make([]string, 0, len(rr.down))
	for s := range rr.down {
		down = append(down, s)
	}
	return map[string]interface{}{
		"algorithm":     "round-robin",
		"server_count":  len(rr.servers),
		"servers":       append([]string{}, rr.servers...),
		"down":          down,
		"current_index": rr.current,
	}
}
