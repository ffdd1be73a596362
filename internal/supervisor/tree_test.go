// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("Root() = nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}

	custom, err := NewSupervisorTree(nil, TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree(nil logger) error = %v", err)
	}
	if custom.config.FailureThreshold != 2 || custom.config.ShutdownTimeout != time.Second {
		t.Errorf("custom config overwritten: %+v", custom.config)
	}
	if custom.config.FailureDecay != 30 || custom.config.FailureBackoff != 15*time.Second {
		t.Errorf("zero fields not defaulted: %+v", custom.config)
	}
}

func TestSupervisorTree_LayersStartServices(t *testing.T) {
	tests := []struct {
		name string
		add  func(*SupervisorTree, suture.Service) suture.ServiceToken
	}{
		{name: "data", add: (*SupervisorTree).AddDataService},
		{name: "recommend", add: (*SupervisorTree).AddRecommendService},
		{name: "api", add: (*SupervisorTree).AddAPIService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
			svc := NewMockService(tt.name + "-service")
			tt.add(tree, svc)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := tree.ServeBackground(ctx)

			if !waitFor(t, time.Second, func() bool { return svc.StartCount() >= 1 }) {
				t.Errorf("%s service was not started", tt.name)
			}
			cancel()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, context.Canceled) {
					t.Errorf("Serve() error = %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("tree did not shut down in time")
			}
			if svc.StopCount() != svc.StartCount() {
				t.Errorf("stops = %d, starts = %d", svc.StopCount(), svc.StartCount())
			}
		})
	}
}

func TestSupervisorTree_FailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("trainer")
	failing.SetFailCount(2)
	stable := NewMockService("http")

	tree.AddRecommendService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	if !waitFor(t, 2*time.Second, func() bool { return failing.StartCount() >= 3 }) {
		t.Errorf("failing service starts = %d, want at least 3", failing.StartCount())
	}
	if stable.StartCount() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.StartCount())
	}

	cancel()
	<-errCh
}

func TestSupervisorTree_RemoveRecommendService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := NewMockService("trainer")
	token := tree.AddRecommendService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	if !waitFor(t, time.Second, func() bool { return svc.StartCount() >= 1 }) {
		t.Fatal("service was not started")
	}
	if err := tree.RemoveRecommendService(token); err != nil {
		t.Fatalf("RemoveRecommendService() error = %v", err)
	}
	if !waitFor(t, time.Second, func() bool { return svc.StopCount() >= 1 }) {
		t.Error("removed service did not stop")
	}

	cancel()
	<-errCh

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("UnstoppedServiceReport() = %v, want empty", report)
	}
}

func TestMockService(t *testing.T) {
	t.Run("runs until canceled", func(t *testing.T) {
		svc := NewMockService("runner")
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	t.Run("fails then blocks", func(t *testing.T) {
		svc := NewMockService("flaky")
		svc.SetFailCount(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, errSimulatedFailure) {
			t.Errorf("first Serve() error = %v, want simulated failure", err)
		}
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("second Serve() error = %v, want context.Canceled", err)
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		svc := NewMockService("done")
		svc.SetError(suture.ErrDoNotRestart)
		if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
		}
		if svc.String() != "done" {
			t.Errorf("String() = %q", svc.String())
		}
	})
}
