package http

import (
	"context"
	"net/http"
	"strings"

	"tracker/internal/log"
	"tracker/internal/services"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified token claims of the request, or nil
// when auth is disabled.
func ClaimsFromContext(ctx context.Context) *services.Claims {
	c, _ := ctx.Value(claimsKey{}).(*services.Claims)
	return c
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, err := ParseCredentials(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	if _, err := s.svc.Auth.Register(r.Context(), username, password); err != nil {
		respondError(w, r, err, "Error registering user")
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Message("User registered successfully", "").Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := ParseCredentials(r)
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	token, err := s.svc.Auth.Login(r.Context(), username, password)
	if err != nil {
		respondError(w, r, err, "Error logging in")
		return
	}
	NewJSONResponse().Body(MessageResponse{Message: "Login successful", Token: token}).Write(w)
}

// requireToken rejects requests without a valid "Authorization: Bearer"
// token and stores the claims in the request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			UnauthorizedError("Missing token").Write(w)
			return
		}
		claims, err := s.svc.Auth.ParseToken(raw)
		if err != nil {
			respondError(w, r, err, "")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUsername, claims.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
