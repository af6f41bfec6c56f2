package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int64
}

func (c *countingRefresher) RefreshAll(_ context.Context) {
	c.calls.Add(1)
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", &countingRefresher{}, time.Second); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestRunOnceInvokesRefresher(t *testing.T) {
	r := &countingRefresher{}
	s, err := New("@every 1h", r, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.RunOnce()
	s.RunOnce()

	if got := r.calls.Load(); got != 2 {
		t.Fatalf("RefreshAll called %d times, want 2", got)
	}
}

func TestStartStop(t *testing.T) {
	r := &countingRefresher{}
	s, err := New("@every 1h", r, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Start()
	s.Stop()
}

type slowRefresher struct {
	deadline atomic.Bool
}

func (s *slowRefresher) RefreshAll(ctx context.Context) {
	_, ok := ctx.Deadline()
	s.deadline.Store(ok)
}

func TestRunOncePassesDeadline(t *testing.T) {
	r := &slowRefresher{}
	s, err := New("@every 1h", r, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.RunOnce()
	if !r.deadline.Load() {
		t.Fatal("refresh context should carry a deadline")
	}
}
