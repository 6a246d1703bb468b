package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/auth"
	"github.com/studysphere/studysphere-server/internal/chat"
	"github.com/studysphere/studysphere-server/internal/config"
	"github.com/studysphere/studysphere-server/internal/notify"
	"github.com/studysphere/studysphere-server/internal/service/courses"
	"github.com/studysphere/studysphere-server/internal/store"
	"github.com/studysphere/studysphere-server/internal/store/sqlite"
)

type testEnv struct {
	ts      *httptest.Server
	store   store.Store
	authSvc *auth.Service
	hub     *chat.Hub
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.JWTSecret = "testsecret"

	authSvc := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	})

	disabledLogger := zerolog.New(nil)
	courseSvc := courses.New(st, notify.NewConsoleMailer(&disabledLogger), &disabledLogger)
	pipeline := chat.NewPipeline(st)
	hub := chat.NewHub()

	server := NewServer(authSvc, courseSvc, pipeline, hub, st, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, authSvc: authSvc, hub: hub}
}

// registerUser creates a user through the auth service and returns its
// token and user ID.
func (e *testEnv) registerUser(t *testing.T, username string, role store.Role) (string, int64) {
	t.Helper()

	token, err := e.authSvc.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	claims, err := e.authSvc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	return token, claims.UserID
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// doJSON performs a JSON request against the test server and decodes
// the response body into out when it is non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := stdhttp.NewRequest(method, e.ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}
