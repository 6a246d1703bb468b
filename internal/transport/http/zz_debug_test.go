package http

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/studysphere/studysphere-server/internal/chat"
	"github.com/studysphere/studysphere-server/internal/store"
)

func TestZZDebugWS(t *testing.T) {
	env := startTestServer(t)
	token, _ := env.registerUser(t, "alice", store.RoleStudent)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := env.store.CreateChatRoom(ctx, "lobby"); err != nil {
		t.Fatalf("create room: %v", err)
	}

	wsURL := strings.Replace(env.ts.URL, "http", "ws", 1) + "/ws/chat/lobby?token=" + token
	t.Logf("dialing %s", wsURL)
	start := time.Now()
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	t.Logf("dial took %v err=%v", time.Since(start), err)
	if resp != nil {
		t.Logf("resp status=%d headers=%v", resp.StatusCode, resp.Header)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	n := env.hub.MemberCount(chat.GroupName("lobby"))
	t.Logf("members=%d", n)

	typ, data, rerr := conn.Read(ctx)
	t.Logf("read: typ=%v data=%q err=%v closeStatus=%v", typ, data, rerr, websocket.CloseStatus(rerr))
}
