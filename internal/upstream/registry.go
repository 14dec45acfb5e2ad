package upstream

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health is the reported health of one collaborator.
type Health struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Healthy reports whether the collaborator circuit is closed.
func (h *Health) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Degraded reports whether the collaborator circuit is half-open.
func (h *Health) Degraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// Registry tracks collaborator clients and their request outcomes so the ops
// endpoints can report per-collaborator health.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*trackedClient
}

type trackedClient struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty collaborator registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*trackedClient)}
}

func (r *Registry) register(name string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = &trackedClient{client: c}
}

func (r *Registry) recordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.clients[name]; ok {
		now := time.Now()
		t.lastSuccessAt = &now
	}
}

func (r *Registry) recordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.clients[name]; ok {
		now := time.Now()
		t.lastFailureAt = &now
		if err != nil {
			t.lastError = err.Error()
		}
	}
}

// GetHealth returns the health of one collaborator, or nil if unknown.
func (r *Registry) GetHealth(name string) *Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.clients[name]
	if !ok {
		return nil
	}
	return t.health(name)
}

// AllHealth returns the health of every registered collaborator.
func (r *Registry) AllHealth() []*Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*Health, 0, len(r.clients))
	for name, t := range r.clients {
		health = append(health, t.health(name))
	}
	return health
}

func (t *trackedClient) health(name string) *Health {
	return &Health{
		Name:          name,
		CircuitState:  t.client.BreakerState(),
		Counts:        t.client.BreakerCounts(),
		LastSuccessAt: t.lastSuccessAt,
		LastFailureAt: t.lastFailureAt,
		LastError:     t.lastError,
	}
}
