package ratelimiter

import (
	"time"
)

// Limiter defines the interface for client-side rate limiters.
// Implementations can be local (in-memory) or shared across processes.
//
// Limiters never block: callers that are over budget fail fast instead of
// waiting for capacity.
type Limiter interface {
	// TryConsume atomically checks capacity and consumes tokens plus one
	// request if available. Returns false if either budget is exhausted.
	TryConsume(numTokens int) bool

	// TimeUntilAvailable returns how long until tokens would be available (read-only).
	TimeUntilAvailable(tokens int) time.Duration
}

// Names of the budgets a limiter can run out of.
const (
	LimitTokens   = "tokens"
	LimitRequests = "requests"
)

// Reporter is implemented by limiters that can name the exhausted budget.
type Reporter interface {
	// LimitedBy returns LimitTokens or LimitRequests for the budget that
	// would reject a request costing tokens, or "" if neither would.
	LimitedBy(tokens int) string
}
