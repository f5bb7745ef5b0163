package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/email"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/token"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "Sup3r-secret!"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AccessTokenTTL:   time.Minute,
		RefreshTokenTTL:  time.Hour,
		PasswordResetTTL: 30 * time.Minute,
		AppBaseURL:       "https://app.example.com",
	}
	codec, err := token.NewCodec(token.Config{Secret: []byte("test-secret")})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc := services.NewAuthService(
		users.NewInMemoryRepository(),
		revocations.NewInMemoryLedger(),
		codec, hasher, email.NoopSender{}, log, cfg,
	)

	srv := httptest.NewServer(NewRouter(svc, log))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, decoded
}

func register(t *testing.T, srv *httptest.Server) map[string]any {
	t.Helper()
	resp, body := doJSON(t, srv, http.MethodPost, "/api/register", registerRequest{
		Email: testEmail, Password: testPassword, FirstName: "Alice",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", resp.StatusCode, body)
	}
	return body
}

func tokensOf(t *testing.T, body map[string]any) (access, refresh string) {
	t.Helper()
	tokens, ok := body["tokens"].(map[string]any)
	if !ok {
		t.Fatalf("no tokens in body: %v", body)
	}
	access, _ = tokens["access_token"].(string)
	refresh, _ = tokens["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("empty tokens: %v", tokens)
	}
	return access, refresh
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := register(t, srv)
	user, ok := body["user"].(map[string]any)
	if !ok || user["email"] != testEmail {
		t.Fatalf("unexpected user: %v", body)
	}
	tokensOf(t, body)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/register", registerRequest{
			Email: testEmail, Password: testPassword,
		}, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		resp, body := doJSON(t, srv, http.MethodPost, "/api/register", registerRequest{
			Email: "bob@example.com", Password: "weak",
		}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		if body["error"] == "" {
			t.Fatalf("validation detail missing: %v", body)
		}
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/register", bytes.NewBufferString("{nope"))
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/login", loginRequest{
		Email: testEmail, Password: testPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	tokensOf(t, body)

	t.Run("wrong password unauthorized", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/login", loginRequest{
			Email: testEmail, Password: "Wr0ng-password!",
		}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("unknown email not found", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/login", loginRequest{
			Email: "ghost@example.com", Password: testPassword,
		}, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestRefreshAndVerifyEndpoints(t *testing.T) {
	srv := newTestServer(t)
	body := register(t, srv)
	access, refresh := tokensOf(t, body)

	resp, verifyBody := doJSON(t, srv, http.MethodGet, "/api/verify", nil,
		map[string]string{"Authorization": "Bearer " + access})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d, body %v", resp.StatusCode, verifyBody)
	}
	if verifyBody["kind"] != "access" || verifyBody["email"] != testEmail {
		t.Fatalf("unexpected claims: %v", verifyBody)
	}

	resp, refreshBody := doJSON(t, srv, http.MethodPost, "/api/refresh", refreshRequest{RefreshToken: refresh}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, body %v", resp.StatusCode, refreshBody)
	}
	if refreshBody["access_token"] == "" {
		t.Fatalf("no access token in refresh response: %v", refreshBody)
	}

	t.Run("access token is not a refresh token", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/refresh", refreshRequest{RefreshToken: access}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("missing bearer header", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodGet, "/api/verify", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestLogoutEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body := register(t, srv)
	access, refresh := tokensOf(t, body)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/logout", logoutRequest{
		AccessToken: access, RefreshToken: refresh,
	}, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/verify", nil,
		map[string]string{"Authorization": "Bearer " + access})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("verify after logout = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/refresh", refreshRequest{RefreshToken: refresh}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout = %d, want 401", resp.StatusCode)
	}

	t.Run("empty body rejected", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/logout", logoutRequest{}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/password-reset/request",
		resetRequestRequest{Email: testEmail}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("request status = %d, body %v", resp.StatusCode, body)
	}
	if _, leaked := body["token"]; leaked {
		t.Fatalf("reset token leaked in response: %v", body)
	}

	t.Run("unknown email not found", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/password-reset/request",
			resetRequestRequest{Email: "ghost@example.com"}, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("confirm with garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/password-reset/confirm",
			resetConfirmRequest{Token: "not.a.token", NewPassword: "N3w-secret-pass!"}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})
}
