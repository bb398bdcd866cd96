// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

type countingService struct {
	starts atomic.Int32
	fails  int32
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree("test", testLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: 100 * time.Millisecond,
	})
	svc := &countingService{}
	tree.AddStreamingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(time.Second)
	for svc.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("service never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree exited with %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	tree := NewTree("test", testLogger(), TreeConfig{
		FailureBackoff:  5 * time.Millisecond,
		ShutdownTimeout: 100 * time.Millisecond,
	})
	svc := &countingService{fails: 2}
	tree.AddStreamingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for svc.starts.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("service restarted %d times, want at least 3 starts", svc.starts.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type fakeServer struct {
	listenErr error
	started   chan struct{}
	shutdown  chan struct{}
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{
		listenErr: listenErr,
		started:   make(chan struct{}),
		shutdown:  make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.started)
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.shutdown
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.shutdown)
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewHTTPServerService("test-http", srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestHTTPServiceReportsListenFailure(t *testing.T) {
	listenErr := errors.New("address in use")
	svc := NewHTTPServerService("test-http", newFakeServer(listenErr), time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, listenErr) {
		t.Errorf("Serve returned %v, want listen error", err)
	}
}
