// Package checkout confirms orders without contacting a payment provider.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/format"
	"github.com/pulheze/Hafen/internal/observability"
)

const (
	defaultProvider = "pix"
	statusSimulated = "simulated"
)

// ErrNothingToConfirm is returned for a zero-item confirmation.
var ErrNothingToConfirm = errors.New("checkout: nothing to confirm")

// ConfirmRequest describes the cart being paid.
type ConfirmRequest struct {
	Total    int64
	Items    int
	Provider string
}

// Confirmation is the simulated outcome of a payment.
type Confirmation struct {
	OrderID     string
	Total       int64
	Provider    string
	Status      string
	ConfirmedAt time.Time
}

// Simulator stands in for a PSP. It never performs I/O.
type Simulator struct {
	idGen func() string
	now   func() time.Time
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithIDGenerator overrides order id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.idGen = fn
		}
	}
}

// WithClock overrides the confirmation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewSimulator constructs a Simulator issuing ord_<ulid> references.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		idGen: func() string { return ulid.Make().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm returns a synthetic order reference for the cart total.
func (s *Simulator) Confirm(ctx context.Context, req ConfirmRequest) (Confirmation, error) {
	if req.Items <= 0 {
		return Confirmation{}, ErrNothingToConfirm
	}
	if s == nil {
		s = NewSimulator()
	}
	if err := ctx.Err(); err != nil {
		return Confirmation{}, fmt.Errorf("checkout: confirm: %w", err)
	}

	conf := Confirmation{
		OrderID:     "ord_" + strings.ToLower(s.idGen()),
		Total:       req.Total,
		Provider:    normalizeProvider(req.Provider),
		Status:      statusSimulated,
		ConfirmedAt: s.now().UTC(),
	}
	observability.FromContext(ctx).Info("checkout simulated",
		zap.String("order_id", conf.OrderID),
		zap.String("provider", conf.Provider),
		zap.Int64("total_minor", conf.Total),
		zap.String("total", format.FmtCurrency(conf.Total, "BRL")),
		zap.Int("items", req.Items),
	)
	return conf, nil
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return defaultProvider
	}
	return provider
}
