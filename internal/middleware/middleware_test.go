package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context()).String()))
	})
}

func TestJWTMiddleware(t *testing.T) {
	auth := NewJWTAuth(testSecret)
	userID := uuid.New()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, jwt.MapClaims{"user_id": userID.String(), "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"user_id claim", "Bearer " + signed(t, jwt.MapClaims{"user_id": userID.String(), "exp": time.Now().Add(time.Hour).Unix()}), http.StatusOK},
		{"sub claim", "Bearer " + signed(t, jwt.MapClaims{"sub": userID.String()}), http.StatusOK},
		{"bad subject", "Bearer " + signed(t, jwt.MapClaims{"sub": "42"}), http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			auth.Middleware(echoUser()).ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if tc.status == http.StatusOK && rr.Body.String() != userID.String() {
				t.Errorf("expected user %s, got %s", userID, rr.Body.String())
			}
		})
	}
}

func TestJWTOptional(t *testing.T) {
	auth := NewJWTAuth(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rr := httptest.NewRecorder()
	auth.Optional(echoUser()).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != uuid.Nil.String() {
		t.Errorf("expected an anonymous pass-through, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 2, time.Minute)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("another client should not be limited, got %d", rr.Code)
	}
}
