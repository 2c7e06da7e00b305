// ABOUTME: Tests for HTTP auth middleware
// ABOUTME: Covers bearer extraction, token validation, and role gating

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPAuthMiddleware_ValidToken(t *testing.T) {
	verifier := newTestVerifier(t)
	token, err := verifier.GenerateParent("parent-123", time.Hour)
	if err != nil {
		t.Fatalf("GenerateParent() error = %v", err)
	}

	var seen *Principal
	handler := HTTPAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/children", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ParentID != "parent-123" {
		t.Errorf("principal in context = %+v, want parent-123", seen)
	}
}

func TestHTTPAuthMiddleware_Rejections(t *testing.T) {
	verifier := newTestVerifier(t)

	handler := HTTPAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc123"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/children", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireParentHTTP(t *testing.T) {
	handler := RequireParentHTTP()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("parent allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{Role: RoleParent, ParentID: "p1"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("child forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{Role: RoleChild, ChildID: "c1", ParentID: "p1"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token=query-token", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		if got := TokenFromRequest(req); got != "header-token" {
			t.Errorf("TokenFromRequest() = %q, want header-token", got)
		}
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws?token=query-token", nil)
		if got := TokenFromRequest(req); got != "query-token" {
			t.Errorf("TokenFromRequest() = %q, want query-token", got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if got := TokenFromRequest(req); got != "" {
			t.Errorf("TokenFromRequest() = %q, want empty", got)
		}
	})
}
