package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noDelay(int) time.Duration { return 0 }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxRetries: 3, Delay: noDelay}, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %d calls, err %v", calls, err)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	p := Policy{MaxRetries: 5, Delay: noDelay, Retryable: func(err error) bool { return !errors.Is(err, permanent) }}
	err := Do(context.Background(), p, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected single attempt, got %d calls, err %v", calls, err)
	}
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxRetries: 2, Delay: noDelay}, func() error {
		calls++
		return errors.New("down")
	})
	if err == nil || calls != 3 {
		t.Fatalf("expected 3 attempts and an error, got %d, %v", calls, err)
	}
}

func TestDo_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Policy{MaxRetries: 5, Delay: func(int) time.Duration { return time.Hour }}, func() error {
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_Caps(t *testing.T) {
	if Backoff(0) != 200*time.Millisecond {
		t.Errorf("Backoff(0) = %v", Backoff(0))
	}
	if Backoff(2) != 800*time.Millisecond {
		t.Errorf("Backoff(2) = %v", Backoff(2))
	}
	if Backoff(10) != 5*time.Second {
		t.Errorf("Backoff(10) = %v", Backoff(10))
	}
}
