package hidio

import (
	"sync"
	"time"
)

// Guard wraps a Device so every method call is serialized behind one
// mutex. The acquisition worker's read loop and a caller querying stream
// status both reach the same physical handle; without this, a feature
// report request could race a concurrent interrupt read on the same
// handle. Guard makes that safe by blocking the second caller until the
// first's call returns rather than disallowing the concurrent call
// outright.
type Guard struct {
	mu  sync.Mutex
	dev Device
}

var _ Device = (*Guard)(nil)

// NewGuard wraps dev for serialized access.
func NewGuard(dev Device) *Guard {
	return &Guard{dev: dev}
}

func (g *Guard) SendFeatureReport(data []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dev.SendFeatureReport(data)
}

func (g *Guard) GetFeatureReport(data []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dev.GetFeatureReport(data)
}

func (g *Guard) ReadTimeout(data []byte, timeout time.Duration) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dev.ReadTimeout(data, timeout)
}

func (g *Guard) SetNonblocking(nonblocking bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dev.SetNonblocking(nonblocking)
}

func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dev.Close()
}
