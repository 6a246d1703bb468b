package chat

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event not received")
	}
	return Event{}
}

func mustNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event received: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
