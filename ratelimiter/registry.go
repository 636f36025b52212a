package ratelimiter

import (
	"slices"
	"sync"
	"time"
)

// Registry maps a model id to its limiter. Models without a limiter are
// never limited.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]Limiter)}
}

// Lookup returns the limiter for model.
func (r *Registry) Lookup(model string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.limiters[model]
	return l, ok
}

// Set installs limiter for model. A nil limiter removes the entry.
func (r *Registry) Set(model string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter == nil {
		delete(r.limiters, model)
		return
	}
	r.limiters[model] = limiter
}

// Configure installs an in-memory limiter with the given per-minute
// budgets. Two zero budgets remove any limiter for model.
func (r *Registry) Configure(model string, tokensPerMinute, requestsPerMinute int) {
	if tokensPerMinute <= 0 && requestsPerMinute <= 0 {
		r.Set(model, nil)
		return
	}
	r.Set(model, New(tokensPerMinute, requestsPerMinute))
}

// Decision is the outcome of Allow.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration

	// LimitType names the exhausted budget when the limiter reports it
	LimitType string
}

// Allow charges tokens and one request to model's limiter. When the budget
// is exhausted the decision carries how long until it would succeed.
func (r *Registry) Allow(model string, tokens int) Decision {
	l, ok := r.Lookup(model)
	if !ok || l.TryConsume(tokens) {
		return Decision{Allowed: true}
	}

	d := Decision{RetryAfter: l.TimeUntilAvailable(tokens)}
	if rep, ok := l.(Reporter); ok {
		d.LimitType = rep.LimitedBy(tokens)
	}
	return d
}

// Models returns the ids with a limiter, sorted.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]string, 0, len(r.limiters))
	for m := range r.limiters {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}
