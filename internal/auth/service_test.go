package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studysphere/studysphere-server/internal/store"
	"github.com/studysphere/studysphere-server/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return NewService(st, jwtConfig)
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Doe",
		Role:      store.RoleStudent,
	}
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	in := validInput()
	in.Username = "ab"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	in.Username = " ab "
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	in := validInput()
	in.Password = "12345"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRegister_RejectsInvalidRole(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	in := validInput()
	in.Role = "admin"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegister_TrimsUsernameAndCreatesUser(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	in := validInput()
	in.Username = " alice "
	token, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	// Should collide because the stored username is trimmed.
	in = validInput()
	in.Email = "alice2@example.com"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginAndValidateToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	in := validInput()
	in.Role = store.RoleTeacher
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	token, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Username != "alice" || claims.Role != store.RoleTeacher {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
