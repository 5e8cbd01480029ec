package tilize

import (
	"context"
	"testing"
	"time"
)

func TestCancellationToken(t *testing.T) {
	token := NewCancellationToken()
	if token.Cancelled() {
		t.Fatal("New token should not be cancelled")
	}
	token.Cancel()
	token.Cancel()
	if !token.Cancelled() {
		t.Error("Token should be cancelled")
	}

	var nilToken *CancellationToken
	nilToken.Cancel()
	if nilToken.Cancelled() {
		t.Error("Nil token should never be cancelled")
	}
}

func TestCancelOnDone(t *testing.T) {
	token := NewCancellationToken()
	ctx, cancel := context.WithCancel(context.Background())
	stop := token.CancelOnDone(ctx)
	defer stop()

	cancel()
	deadline := time.Now().Add(time.Second)
	for !token.Cancelled() {
		if time.Now().After(deadline) {
			t.Fatal("Token not cancelled after context was done")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCancelOnDoneStop(t *testing.T) {
	token := NewCancellationToken()
	ctx, cancel := context.WithCancel(context.Background())
	stop := token.CancelOnDone(ctx)
	stop()
	stop()
	cancel()
	time.Sleep(10 * time.Millisecond)
	if token.Cancelled() {
		t.Error("Stopped watcher should not cancel the token")
	}
}
