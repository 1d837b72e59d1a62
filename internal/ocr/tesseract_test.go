package ocr

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunBlockingReturnsResult(t *testing.T) {
	cleaned := false
	text, err := runBlocking(context.Background(),
		func() (string, error) { return "hello", nil },
		func() { cleaned = true })
	if err != nil || text != "hello" {
		t.Fatalf("runBlocking = %q, %v", text, err)
	}
	if !cleaned {
		t.Error("cleanup did not run after the call completed")
	}
}

func TestRunBlockingCleanupWaitsForAbandonedCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	finished := make(chan struct{})
	events := make(chan string, 2)

	_, err := runBlocking(ctx,
		func() (string, error) {
			<-release
			events <- "call"
			return "late", nil
		},
		func() {
			events <- "cleanup"
			close(finished)
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// The call was abandoned but is still in flight; its resources must
	// not be released yet.
	select {
	case e := <-events:
		t.Fatalf("%q happened before the blocked call returned", e)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-finished
	if first, second := <-events, <-events; first != "call" || second != "cleanup" {
		t.Errorf("order = %q then %q, want call then cleanup", first, second)
	}
}

func TestRunBlockingPropagatesCallError(t *testing.T) {
	wantErr := errors.New("engine fault")
	_, err := runBlocking(context.Background(),
		func() (string, error) { return "", wantErr },
		func() {})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the call's error", err)
	}
}
