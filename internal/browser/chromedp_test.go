package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewChromeFactory_TimeoutDefaulting(t *testing.T) {
	if f := NewChromeFactory(0); f.actionTimeout != defaultActionTimeout {
		t.Errorf("expected default timeout, got %s", f.actionTimeout)
	}
	if f := NewChromeFactory(5 * time.Second); f.actionTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", f.actionTimeout)
	}
}

// Каждое действие сессии идёт через withTimeout, поэтому обращение
// к отсутствующему элементу не может висеть дольше дедлайна.
func TestWithTimeout_Expires(t *testing.T) {
	s := &chromeSession{ctx: context.Background(), timeout: 10 * time.Millisecond}

	tctx, cancel := s.withTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, ok := tctx.Deadline(); !ok {
		t.Fatal("action context must carry a deadline")
	}

	select {
	case <-tctx.Done():
	case <-time.After(time.Second):
		t.Fatal("action context did not expire")
	}

	if !errors.Is(tctx.Err(), context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", tctx.Err())
	}
}

func TestWithTimeout_TaskCancelPropagates(t *testing.T) {
	s := &chromeSession{ctx: context.Background(), timeout: time.Hour}

	taskCtx, cancelTask := context.WithCancel(context.Background())
	tctx, cancel := s.withTimeout(taskCtx, time.Hour)
	defer cancel()

	cancelTask()

	select {
	case <-tctx.Done():
	case <-time.After(time.Second):
		t.Fatal("task cancellation did not reach the action context")
	}
}
