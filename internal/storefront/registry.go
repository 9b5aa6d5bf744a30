package storefront

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/checkout"
	"github.com/pulheze/Hafen/internal/nav"
)

const defaultIdleTTL = 2 * time.Hour

// Registry maps page keys to live pages.
type Registry struct {
	mu       sync.Mutex
	pages    map[string]*Page
	sections []string
	links    []nav.Item
	checkout *checkout.Simulator
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

// Option customises a Registry.
type Option func(*Registry)

// WithIdleTTL sets how long a page may stay untouched before Sweep drops it.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the base logger for pages.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCheckout sets the simulator used by every page.
func WithCheckout(sim *checkout.Simulator) Option {
	return func(r *Registry) {
		if sim != nil {
			r.checkout = sim
		}
	}
}

// NewRegistry returns an empty registry. sections and links describe the page
// markup every Page navigates over.
func NewRegistry(sections []string, links []nav.Item, opts ...Option) *Registry {
	r := &Registry{
		pages:    make(map[string]*Page),
		sections: append([]string(nil), sections...),
		links:    append([]nav.Item(nil), links...),
		logger:   zap.NewNop(),
		ttl:      defaultIdleTTL,
		now:      time.Now,
		newID:    func() string { return strings.ToLower(ulid.Make().String()) },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.checkout == nil {
		r.checkout = checkout.NewSimulator()
	}
	return r
}

// Open starts a fresh page under key, discarding any previous state. An empty
// key gets a new ULID.
func (r *Registry) Open(key string) *Page {
	key = strings.TrimSpace(key)
	if key == "" {
		key = r.newID()
	}
	page := newPage(key, r.sections, r.links, r.checkout, r.logger, r.now)
	r.mu.Lock()
	r.pages[key] = page
	r.mu.Unlock()
	return page
}

// Get returns the page under key, opening a fresh one when it is unknown or
// has expired.
func (r *Registry) Get(key string) *Page {
	key = strings.TrimSpace(key)
	if key != "" {
		r.mu.Lock()
		page, ok := r.pages[key]
		r.mu.Unlock()
		if ok && r.now().Sub(page.LastSeen()) <= r.ttl {
			page.markSeen()
			return page
		}
	}
	return r.Open(key)
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep drops pages idle for longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, page := range r.pages {
		if page.LastSeen().Before(cutoff) {
			delete(r.pages, key)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Info("page sweep removed sessions", zap.Int("count", removed), zap.Int("remaining", r.Len()))
			}
		case <-ctx.Done():
			return
		}
	}
}
