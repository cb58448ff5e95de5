package resilience

import (
	"errors"
	"testing"
	"time"
)

func testBreaker(threshold int, reset time.Duration) *Breaker {
	return NewBreaker(BreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := testBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("allow %d: unexpected error: %v", i, err)
		}
		b.Record(errors.New("fail"))
	}

	if b.State() != BreakerOpen {
		t.Fatalf("expected open, got %v", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected ErrBreakerOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := testBreaker(3, time.Minute)

	b.Record(errors.New("fail"))
	b.Record(errors.New("fail"))
	b.Record(nil)
	b.Record(errors.New("fail"))
	b.Record(errors.New("fail"))

	if b.State() != BreakerClosed {
		t.Errorf("expected closed after interleaved success, got %v", b.State())
	}
}

func TestBreaker_HalfOpenProbeRecovers(t *testing.T) {
	b := testBreaker(1, 5*time.Millisecond)

	b.Record(errors.New("fail"))
	if b.State() != BreakerOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	time.Sleep(10 * time.Millisecond)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe to be admitted: %v", err)
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open, got %v", b.State())
	}

	// A second caller is rejected while the probe is outstanding.
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected concurrent probe rejection, got %v", err)
	}

	b.Record(nil)
	if b.State() != BreakerClosed {
		t.Errorf("expected closed after successful probe, got %v", b.State())
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b := testBreaker(1, 5*time.Millisecond)

	b.Record(errors.New("fail"))
	time.Sleep(10 * time.Millisecond)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe to be admitted: %v", err)
	}
	b.Record(errors.New("still failing"))

	if b.State() != BreakerOpen {
		t.Errorf("expected reopen after failed probe, got %v", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected rejection after reopen, got %v", err)
	}
}
