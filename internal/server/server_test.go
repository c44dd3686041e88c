package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(http.NewServeMux(), Options{Port: 0, ShutdownTimeout: time.Second}, logger)
}

func TestGracefulShutdown_RunsFuncsInReverseOrder(t *testing.T) {
	srv := newTestServer()

	var order []string
	srv.OnShutdown("database", func(ctx context.Context) error {
		order = append(order, "database")
		return nil
	})
	srv.OnShutdown("cache", func(ctx context.Context) error {
		order = append(order, "cache")
		return nil
	})

	if err := srv.gracefulShutdown(); err != nil {
		t.Fatalf("gracefulShutdown() = %v, want nil", err)
	}

	want := []string{"cache", "database"}
	if len(order) != len(want) {
		t.Fatalf("ran %d shutdown funcs, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("shutdown order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestGracefulShutdown_CollectsFailuresAndKeepsGoing(t *testing.T) {
	srv := newTestServer()

	errCache := errors.New("cache close failed")
	databaseRan := false

	// Registered first, so it runs last; a failure before it must not
	// prevent it from running.
	srv.OnShutdown("database", func(ctx context.Context) error {
		databaseRan = true
		return nil
	})
	srv.OnShutdown("cache", func(ctx context.Context) error {
		return errCache
	})

	err := srv.gracefulShutdown()
	if err == nil {
		t.Fatal("gracefulShutdown() = nil, want error")
	}
	if !errors.Is(err, errCache) {
		t.Errorf("gracefulShutdown() = %v, want wrapped %v", err, errCache)
	}
	if !databaseRan {
		t.Error("shutdown func registered before the failing one did not run")
	}
}

func TestNew_DefaultsIdleTimeout(t *testing.T) {
	srv := newTestServer()

	if srv.httpServer.IdleTimeout != 2*time.Minute {
		t.Errorf("IdleTimeout = %v, want %v", srv.httpServer.IdleTimeout, 2*time.Minute)
	}
}
