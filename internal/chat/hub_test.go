package chat

import (
	"context"
	"fmt"
	"testing"
)

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub := NewHub()
	group := GroupName("study-hall")

	alice := NewSession("a", 1, "alice", "study-hall")
	bob := NewSession("b", 2, "bob", "study-hall")

	hub.Join(group, alice)
	hub.Join(group, bob)

	ev := Event{Room: "study-hall", From: "alice", Text: "hello"}
	if err := hub.Send(context.Background(), group, ev); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Every current member receives exactly one delivery, sender included.
	got := mustEvent(t, bob.Events)
	if got.From != "alice" || got.Text != "hello" || got.Room != "study-hall" {
		t.Fatalf("unexpected event for bob: %+v", got)
	}
	echo := mustEvent(t, alice.Events)
	if echo.From != "alice" || echo.Text != "hello" {
		t.Fatalf("unexpected echo for alice: %+v", echo)
	}
	mustNoEvent(t, bob.Events)

	hub.Leave(group, alice)
	if err := hub.Send(context.Background(), group, Event{Room: "study-hall", From: "bob", Text: "bye"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	mustEvent(t, bob.Events)
	mustNoEvent(t, alice.Events)
}

func TestHubJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	group := GroupName("general")

	alice := NewSession("a", 1, "alice", "general")
	hub.Join(group, alice)
	hub.Join(group, alice)

	if n := hub.MemberCount(group); n != 1 {
		t.Fatalf("expected 1 member after double join, got %d", n)
	}

	if err := hub.Send(context.Background(), group, Event{Room: "general", From: "alice", Text: "once"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	mustEvent(t, alice.Events)
	mustNoEvent(t, alice.Events)
}

func TestHubLeaveWithoutJoinIsNoop(t *testing.T) {
	hub := NewHub()
	group := GroupName("general")

	alice := NewSession("a", 1, "alice", "general")
	hub.Leave(group, alice)
	hub.Leave(group, alice)

	if n := hub.MemberCount(group); n != 0 {
		t.Fatalf("expected empty group, got %d members", n)
	}
}

func TestHubDisconnectCleanup(t *testing.T) {
	hub := NewHub()
	group := GroupName("general")

	alice := NewSession("a", 1, "alice", "general")
	bob := NewSession("b", 2, "bob", "general")
	hub.Join(group, alice)
	hub.Join(group, bob)

	hub.Leave(group, bob)

	// A later message from another member neither errors nor reaches
	// the departed session.
	if err := hub.Send(context.Background(), group, Event{Room: "general", From: "alice", Text: "still here"}); err != nil {
		t.Fatalf("send after leave: %v", err)
	}
	mustEvent(t, alice.Events)
	mustNoEvent(t, bob.Events)
}

func TestHubConcurrentJoinLeaveSend(t *testing.T) {
	hub := NewHub()
	group := GroupName("busy")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s := NewSession(fmt.Sprintf("s%d", i), int64(i), "user", "busy")
			hub.Join(group, s)
			hub.Leave(group, s)
		}
	}()

	for i := 0; i < 100; i++ {
		if err := hub.Send(context.Background(), group, Event{Room: "busy", Text: "x"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	<-done
}
