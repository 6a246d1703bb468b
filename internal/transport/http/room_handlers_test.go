package http

import (
	"context"
	stdhttp "net/http"
	"testing"

	"github.com/studysphere/studysphere-server/internal/store"
)

func TestCreateRoomNormalizesName(t *testing.T) {
	env := startTestServer(t)
	token, _ := env.registerUser(t, "alice", store.RoleStudent)

	var room RoomResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/rooms", token,
		CreateRoomRequest{Name: "Math Help!"}, &room)
	if status != stdhttp.StatusCreated {
		t.Fatalf("create room status = %d, want %d", status, stdhttp.StatusCreated)
	}
	if room.Name != "math_help" {
		t.Fatalf("room name = %q, want %q", room.Name, "math_help")
	}

	stored, err := env.store.GetChatRoomByName(context.Background(), "math_help")
	if err != nil {
		t.Fatalf("room not persisted: %v", err)
	}
	if stored.ID != room.ID {
		t.Fatalf("stored room id = %d, want %d", stored.ID, room.ID)
	}
}

func TestCreateRoomDuplicateIsConflict(t *testing.T) {
	env := startTestServer(t)
	token, _ := env.registerUser(t, "alice", store.RoleStudent)

	status := env.doJSON(t, stdhttp.MethodPost, "/api/rooms", token,
		CreateRoomRequest{Name: "study hall"}, nil)
	if status != stdhttp.StatusCreated {
		t.Fatalf("first create status = %d, want %d", status, stdhttp.StatusCreated)
	}

	// Same name after normalization collides with the first room.
	status = env.doJSON(t, stdhttp.MethodPost, "/api/rooms", token,
		CreateRoomRequest{Name: "Study   Hall"}, nil)
	if status != stdhttp.StatusConflict {
		t.Fatalf("duplicate create status = %d, want %d", status, stdhttp.StatusConflict)
	}
}

func TestCreateRoomRequiresAuth(t *testing.T) {
	env := startTestServer(t)

	status := env.doJSON(t, stdhttp.MethodPost, "/api/rooms", "",
		CreateRoomRequest{Name: "nope"}, nil)
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("unauthenticated create status = %d, want %d", status, stdhttp.StatusUnauthorized)
	}
}

func TestListRooms(t *testing.T) {
	env := startTestServer(t)
	token, _ := env.registerUser(t, "alice", store.RoleStudent)

	for _, name := range []string{"alpha", "beta"} {
		if status := env.doJSON(t, stdhttp.MethodPost, "/api/rooms", token,
			CreateRoomRequest{Name: name}, nil); status != stdhttp.StatusCreated {
			t.Fatalf("create %s status = %d", name, status)
		}
	}

	var rooms []RoomResponse
	status := env.doJSON(t, stdhttp.MethodGet, "/api/rooms", token, nil, &rooms)
	if status != stdhttp.StatusOK {
		t.Fatalf("list rooms status = %d, want %d", status, stdhttp.StatusOK)
	}
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
}

func TestRoomMessageHistory(t *testing.T) {
	env := startTestServer(t)
	token, userID := env.registerUser(t, "alice", store.RoleStudent)
	ctx := context.Background()

	room, err := env.store.CreateChatRoom(ctx, "history")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, body := range []string{"first", "second", "third"} {
		if _, err := env.store.AppendMessage(ctx, room.ID, userID, body); err != nil {
			t.Fatalf("append %q: %v", body, err)
		}
	}

	var messages []MessageResponse
	status := env.doJSON(t, stdhttp.MethodGet, "/api/rooms/history/messages", token, nil, &messages)
	if status != stdhttp.StatusOK {
		t.Fatalf("history status = %d, want %d", status, stdhttp.StatusOK)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Body != want {
			t.Fatalf("message %d = %q, want %q", i, messages[i].Body, want)
		}
	}
}

func TestRoomMessagesUnknownRoom(t *testing.T) {
	env := startTestServer(t)
	token, _ := env.registerUser(t, "alice", store.RoleStudent)

	status := env.doJSON(t, stdhttp.MethodGet, "/api/rooms/nowhere/messages", token, nil, nil)
	if status != stdhttp.StatusNotFound {
		t.Fatalf("unknown room status = %d, want %d", status, stdhttp.StatusNotFound)
	}
}
