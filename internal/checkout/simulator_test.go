package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pulheze/Hafen/internal/observability"
)

func TestConfirmIssuesOrderReference(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sim := NewSimulator(WithIDGenerator(func() string { return "01HX" }), WithClock(func() time.Time { return fixed }))

	core, logs := observer.New(zap.InfoLevel)
	ctx := observability.WithLogger(context.Background(), zap.New(core))

	conf, err := sim.Confirm(ctx, ConfirmRequest{Total: 14990, Items: 3})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if conf.OrderID != "ord_01hx" {
		t.Fatalf("unexpected order id %q", conf.OrderID)
	}
	if conf.Provider != "pix" || conf.Status != "simulated" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
	if !conf.ConfirmedAt.Equal(fixed) {
		t.Fatalf("unexpected timestamp %s", conf.ConfirmedAt)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["total"] != "R$ 149,90" {
		t.Fatalf("expected one info log with formatted total, got %v", logs.All())
	}
}

func TestConfirmDefaultGeneratorUsesULID(t *testing.T) {
	conf, err := NewSimulator().Confirm(context.Background(), ConfirmRequest{Total: 100, Items: 1, Provider: " MercadoPago "})
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if !strings.HasPrefix(conf.OrderID, "ord_") || len(conf.OrderID) != len("ord_")+26 {
		t.Fatalf("unexpected order id %q", conf.OrderID)
	}
	if conf.Provider != "mercadopago" {
		t.Fatalf("unexpected provider %q", conf.Provider)
	}
}

func TestConfirmRejectsEmptyCartAndCancelledContext(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.Confirm(context.Background(), ConfirmRequest{}); !errors.Is(err, ErrNothingToConfirm) {
		t.Fatalf("expected ErrNothingToConfirm, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Confirm(ctx, ConfirmRequest{Total: 1, Items: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
