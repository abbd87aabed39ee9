// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for stream telemetry. Counters holds the per-kind byte
// accounting fed by the adapter's write and read paths; the registry keeps
// arbitrary named metrics for external monitoring.

package control

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-stream/api"
)

// Counters accumulates per-kind traffic totals. All methods are safe for
// concurrent use, though in practice the adapter updates them from one
// loop thread.
type Counters struct {
	tcpSent  atomic.Int64
	tcpRecv  atomic.Int64
	pipeSent atomic.Int64
	pipeRecv atomic.Int64
	udpSent  atomic.Int64
	udpRecv  atomic.Int64
}

var defaultCounters Counters

// Default returns the process-wide counter set.
func Default() *Counters { return &defaultCounters }

// AddSent records n bytes accepted for sending on a stream of the given kind.
func (c *Counters) AddSent(kind api.HandleKind, n int) {
	switch kind {
	case api.KindTCP:
		c.tcpSent.Add(int64(n))
	case api.KindNamedPipe:
		c.pipeSent.Add(int64(n))
	case api.KindUDP:
		c.udpSent.Add(int64(n))
	}
}

// AddRecv records n bytes received on a stream of the given kind.
func (c *Counters) AddRecv(kind api.HandleKind, n int) {
	switch kind {
	case api.KindTCP:
		c.tcpRecv.Add(int64(n))
	case api.KindNamedPipe:
		c.pipeRecv.Add(int64(n))
	case api.KindUDP:
		c.udpRecv.Add(int64(n))
	}
}

// Sent returns total bytes accepted for sending on streams of kind.
func (c *Counters) Sent(kind api.HandleKind) int64 {
	switch kind {
	case api.KindTCP:
		return c.tcpSent.Load()
	case api.KindNamedPipe:
		return c.pipeSent.Load()
	case api.KindUDP:
		return c.udpSent.Load()
	}
	return 0
}

// Recv returns total bytes received on streams of kind.
func (c *Counters) Recv(kind api.HandleKind) int64 {
	switch kind {
	case api.KindTCP:
		return c.tcpRecv.Load()
	case api.KindNamedPipe:
		return c.pipeRecv.Load()
	case api.KindUDP:
		return c.udpRecv.Load()
	}
	return 0
}

// Publish writes the current totals into mr, one key per kind and
// direction.
func (c *Counters) Publish(mr *MetricsRegistry) {
	mr.Set("tcp.bytes_sent", c.tcpSent.Load())
	mr.Set("tcp.bytes_recv", c.tcpRecv.Load())
	mr.Set("pipe.bytes_sent", c.pipeSent.Load())
	mr.Set("pipe.bytes_recv", c.pipeRecv.Load())
	mr.Set("udp.bytes_sent", c.udpSent.Load())
	mr.Set("udp.bytes_recv", c.udpRecv.Load())
}

// MetricsRegistry holds mutable named metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
