package platform

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBounded(t *testing.T) {
	errQuery := errors.New("provider failure")
	if err := bounded(context.Background(), "query", func() error { return errQuery }); !errors.Is(err, errQuery) {
		t.Errorf("err = %v, want the function's error", err)
	}
	if err := bounded(context.Background(), "query", func() error { return nil }); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestBounded_GivesUpOnDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := bounded(ctx, "wmi query", func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("bounded returned after %v", elapsed)
	}
}

func TestBounded_SkipsWhenAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := bounded(ctx, "query", func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want canceled", err)
	}
	if called {
		t.Error("function ran on a cancelled context")
	}
}
