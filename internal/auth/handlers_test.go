package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/userctx"
	"github.com/golang-jwt/jwt/v5"
)

func testConfig(mode string, required bool) *config.Config {
	return &config.Config{
		AuthMode:      mode,
		AuthRequired:  required,
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTIssuer:     "calorie-diary-test",
		JWTTTLMinutes: 60,
	}
}

func TestHandleInstall(t *testing.T) {
	service := NewService(testConfig("install", true))
	handler := NewHandlers(service)

	req := httptest.NewRequest("POST", "/v1/auth/install", nil)
	w := httptest.NewRecorder()
	handler.HandleInstall(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp InstallResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.InstallationID == "" {
		t.Fatalf("expected token and installation id, got %+v", resp)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("expected token_type Bearer, got %q", resp.TokenType)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected expires_in 3600, got %d", resp.ExpiresIn)
	}

	sub, err := service.Verify(resp.AccessToken)
	if err != nil || sub != resp.InstallationID {
		t.Fatalf("expected sub %s, got %s (%v)", resp.InstallationID, sub, err)
	}
}

func TestHandleInstallDisabled(t *testing.T) {
	handler := NewHandlers(NewService(testConfig("none", false)))

	w := httptest.NewRecorder()
	handler.HandleInstall(w, httptest.NewRequest("POST", "/v1/auth/install", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHandleRefresh(t *testing.T) {
	service := NewService(testConfig("install", true))
	handler := NewHandlers(service)
	first, _ := service.Install(context.Background())

	req := httptest.NewRequest("POST", "/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+first.AccessToken)
	w := httptest.NewRecorder()
	handler.HandleRefresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	var resp InstallResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.InstallationID != first.InstallationID {
		t.Fatalf("expected same installation id, got %s", resp.InstallationID)
	}

	w = httptest.NewRecorder()
	handler.HandleRefresh(w, httptest.NewRequest("POST", "/v1/auth/refresh", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", w.Code)
	}
}

func TestVerifyRejects(t *testing.T) {
	cfg := testConfig("install", true)
	service := NewService(cfg)

	t.Run("Expired", func(t *testing.T) {
		token, _ := service.sign("owner-1", -time.Minute)
		if _, err := service.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewService(&config.Config{AuthMode: "install", JWTSecret: cfg.JWTSecret, JWTIssuer: "someone-else", JWTTTLMinutes: 60})
		token, _ := other.sign("owner-1", time.Hour)
		if _, err := service.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("WrongScope", func(t *testing.T) {
		now := time.Now()
		claims := Claims{Scope: "admin", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		if _, err := service.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("NoExpiry", func(t *testing.T) {
		claims := Claims{Scope: diaryScope, RegisteredClaims: jwt.RegisteredClaims{Subject: "owner-1", Issuer: cfg.JWTIssuer}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		if _, err := service.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewService(&config.Config{AuthMode: "install", JWTSecret: "other", JWTIssuer: cfg.JWTIssuer, JWTTTLMinutes: 60})
		token, _ := other.sign("owner-1", time.Hour)
		if _, err := service.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestMiddlewareAuth(t *testing.T) {
	cfg := testConfig("install", true)
	service := NewService(cfg)
	middleware := NewMiddleware(cfg, service)

	t.Run("ValidToken", func(t *testing.T) {
		token, err := service.sign("owner-123", time.Hour)
		if err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest("GET", "/v1/days/2024-06-01", nil)
		req.Header.Set("Authorization", "bearer "+token)
		w := httptest.NewRecorder()

		var calledNext bool
		handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calledNext = true
			if owner := userctx.OwnerID(r.Context()); owner != "owner-123" {
				t.Errorf("expected owner-123 in context, got %s", owner)
			}
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(w, req)

		if !calledNext || w.Code != http.StatusOK {
			t.Fatalf("expected next handler with 200, got called=%t status=%d", calledNext, w.Code)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("should not call next handler")
		}))
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/goals", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("PublicPath", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/v1/auth/install", nil))

		if w.Code != http.StatusNoContent {
			t.Errorf("expected public path to pass, got %d", w.Code)
		}
	})
}

func TestOptionalAuthWithoutToken(t *testing.T) {
	cfg := testConfig("install", false)
	middleware := NewMiddleware(cfg, NewService(cfg))

	w := httptest.NewRecorder()
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if owner := userctx.OwnerID(r.Context()); owner != userctx.DefaultOwnerID {
			t.Errorf("expected default owner, got %s", owner)
		}
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/goals", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/v1/goals", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected bad token to be rejected, got %d", w.Code)
	}
}
