package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store/memory"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), "0123456789abcdef", time.Hour, log.Discard())

	if _, err := svc.Register(ctx, "alice", "123"); !errors.Is(err, core.ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
	if _, err := svc.Register(ctx, "  ", "secret1"); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("expected ErrEmptyUsername, got %v", err)
	}

	u, err := svc.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if _, err := svc.Register(ctx, "ALICE", "secret2"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"ok", "alice", "secret1", nil},
		{"unknown user", "bob", "secret1", ErrUserNotFound},
		{"wrong password", "alice", "nope!!", ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrInvalidCredentials) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			claims, err := svc.ParseToken(token)
			if err != nil {
				t.Fatalf("ParseToken: %v", err)
			}
			if claims.Username != "alice" || claims.Subject != "1" {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	ctx := context.Background()
	users := memory.New()
	svc := NewAuthService(users, "0123456789abcdef", time.Minute, log.Discard())
	if _, err := svc.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}
	token, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	other := NewAuthService(users, "another-secret-value", time.Minute, log.Discard())
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: expected ErrInvalidToken, got %v", err)
	}

	if _, err := svc.ParseToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: expected ErrInvalidToken, got %v", err)
	}
}
