package tokens

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRepo struct {
	m   map[string]Entry
	err error
}

func (r fakeRepo) LoadTokens(ctx context.Context) (map[string]Entry, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]Entry, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out, nil
}

func TestReloader_LoadOnce_Success(t *testing.T) {
	c := NewCache()
	r := NewReloader(fakeRepo{m: map[string]Entry{"k": {RateLimit: 3}}}, c, time.Hour)

	if err := r.LoadOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Ready() {
		t.Fatalf("expected cache ready after successful LoadOnce")
	}
	if !c.Validate("k") {
		t.Fatalf("expected token to validate after load")
	}
	if got := c.RateLimit("k"); got != 3 {
		t.Fatalf("expected rate limit 3, got %d", got)
	}
}

func TestReloader_LoadOnce_Error_DoesNotReplace(t *testing.T) {
	c := NewCache()
	c.Replace(map[string]Entry{"keep": {RateLimit: 7}})

	expectedErr := errors.New("boom")
	r := NewReloader(fakeRepo{err: expectedErr}, c, time.Hour)

	if err := r.LoadOnce(context.Background()); !errors.Is(err, expectedErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	if got := c.RateLimit("keep"); got != 7 {
		t.Fatalf("expected cache unchanged, got %d", got)
	}
}

func TestReloader_Run_StopsOnClose(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	r := NewReloader(fakeRepo{err: errors.New("down")}, c, 5*time.Millisecond)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(stop, func(error) { calls.Add(1) })
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("reloader did not stop")
	}
	if calls.Load() == 0 {
		t.Fatalf("expected onError to be called for failing loads")
	}
}

func TestCache_NotReadyAndUnknownTokens(t *testing.T) {
	c := NewCache()
	if c.Ready() {
		t.Fatalf("fresh cache must not be ready")
	}
	if c.Validate("anything") {
		t.Fatalf("fresh cache must not validate tokens")
	}
	if got := c.RateLimit("anything"); got != 0 {
		t.Fatalf("unknown token rate limit must be 0, got %d", got)
	}
}
