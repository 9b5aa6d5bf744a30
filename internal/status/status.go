// Package status aggregates component checks for the health endpoint.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Component states.
const (
	StateOperational = "operational"
	StateDegraded    = "degraded"
)

// Summary captures an overview of the site components.
type Summary struct {
	State      string      `json:"state"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Components []Component `json:"components"`
}

// Component represents the status of an individual subsystem.
type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Check reports a component's health. A nil error means operational; detail
// is shown either way.
type Check func(ctx context.Context) (detail string, err error)

// Checker runs registered checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Check
	now    func() time.Time
}

// NewChecker returns an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: map[string]Check{}, now: time.Now}
}

// Register adds or replaces the check for name.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Summary runs every check. The overall state is degraded when any check fails.
func (c *Checker) Summary(ctx context.Context) Summary {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	summary := Summary{State: StateOperational, UpdatedAt: c.now().UTC()}
	for _, name := range names {
		detail, err := checks[name](ctx)
		comp := Component{Name: name, Status: StateOperational, Detail: detail}
		if err != nil {
			comp.Status = StateDegraded
			comp.Detail = err.Error()
			summary.State = StateDegraded
		}
		summary.Components = append(summary.Components, comp)
	}
	return summary
}

// Handler serves the summary as JSON with 200 when operational and 503 otherwise.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary := c.Summary(r.Context())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		code := http.StatusOK
		if summary.State != StateOperational {
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(summary)
	})
}
