package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawnBeforeStart(t *testing.T) {
	rt := New(1, nil)

	err := rt.Spawn("test", func(ctx context.Context) {})
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning, got %v", err)
	}
}

func TestSpawnRunsTask(t *testing.T) {
	rt := New(2, nil)
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var ran atomic.Bool
	done := make(chan struct{})
	if err := rt.Spawn("test", func(ctx context.Context) {
		ran.Store(true)
		close(done)
	}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Task did not run")
	}

	if err := rt.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if !ran.Load() {
		t.Error("Expected task to run")
	}
}

func TestStartTwice(t *testing.T) {
	rt := New(1, nil)
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if err := rt.Start(context.Background()); err == nil {
		t.Error("Expected error on second Start")
	}
}

func TestSpawnLimit(t *testing.T) {
	rt := New(1, nil)
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	release := make(chan struct{})
	started := make(chan struct{})
	if err := rt.Spawn("blocker", func(ctx context.Context) {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	<-started

	err := rt.Spawn("second", func(ctx context.Context) {})
	if !errors.Is(err, ErrRuntimeBusy) {
		t.Errorf("Expected ErrRuntimeBusy, got %v", err)
	}

	close(release)
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestShutdownCancelsTaskContext(t *testing.T) {
	rt := New(1, nil)
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var canceled atomic.Bool
	if err := rt.Spawn("waiter", func(ctx context.Context) {
		<-ctx.Done()
		canceled.Store(true)
	}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !canceled.Load() {
		t.Error("Expected task context to be canceled")
	}
	if rt.Running() {
		t.Error("Runtime should not be running after Shutdown")
	}

	if err := rt.Spawn("late", func(ctx context.Context) {}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning after shutdown, got %v", err)
	}
}

func TestShutdownTimeout(t *testing.T) {
	rt := New(1, nil)
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	release := make(chan struct{})
	defer close(release)
	if err := rt.Spawn("stuck", func(ctx context.Context) { <-release }); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rt.Shutdown(ctx); err == nil {
		t.Error("Expected timeout error from Shutdown")
	}
}
