package tilize

import (
	"context"
	"sync/atomic"
)

// CancellationToken is a shared flag observed cooperatively by workers.
// It starts cleared; once set it stays set. The zero value is ready to use.
type CancellationToken struct {
	cancelled atomic.Bool
}

// NewCancellationToken returns a cleared token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel sets the token. Safe to call from any goroutine, any number of
// times. A nil token ignores the call.
func (t *CancellationToken) Cancel() {
	if t != nil {
		t.cancelled.Store(true)
	}
}

// Cancelled reports whether the token has been set. A nil token is never
// cancelled.
func (t *CancellationToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// CancelOnDone sets the token when ctx is done. The returned stop function
// releases the watcher without cancelling.
func (t *CancellationToken) CancelOnDone(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			t.Cancel()
		case <-done:
		}
	}()
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			close(done)
		}
	}
}
