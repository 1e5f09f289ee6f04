package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeadmin/internal/logging"
	"storeadmin/internal/models"
)

// ---- helpers ----

// memCreds is an in-memory credential slot for tests.
type memCreds struct {
	mu    sync.Mutex
	token string
}

func (m *memCreds) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memCreds) Set(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memCreds) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, ts *httptest.Server, creds *memCreds) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(ts.URL, 5*time.Second, creds, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// signedJWT builds an HS256 token with the given expiry. The client never
// verifies signatures, so any key works.
func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

// ---- auth ----

func TestLogin_PersistsTokenAndReturnsIdentity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)
		require.Equal(t, "s3cret", req.Password)

		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r1", Path: "/"})
		writeJSON(w, authResponse{
			AccessToken: "tok-1",
			User:        models.User{ID: 1, Username: "alice", Group: "user"},
		})
	}))
	defer ts.Close()

	creds := &memCreds{}
	c := newTestClient(t, ts, creds)

	u, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	tok, _ := creds.Get(context.Background())
	assert.Equal(t, "tok-1", tok)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{})
	_, err := c.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister_ConflictMapsToAlreadyExists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{})
	_, err := c.Register(context.Background(), "alice", "a@example.com", "pw", "")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegister_ValidationReasonSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, apiError{Errors: []struct {
			Msg string `json:"msg"`
		}{{Msg: "email is invalid"}}})
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{})
	_, err := c.Register(context.Background(), "alice", "nope", "pw", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email is invalid")
}

func TestRegister_NoContentIsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{})
	u, err := c.Register(context.Background(), "alice", "a@example.com", "pw", "")
	require.NoError(t, err)
	assert.Nil(t, u)
}

// ---- refresh-and-retry ----

func TestDo_RetriesOnceAfterRefresh(t *testing.T) {
	var productCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&productCalls, 1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []models.Product{{ID: 1, Name: "A"}})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, authResponse{AccessToken: "tok-new", User: models.User{ID: 1, Username: "alice"}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	creds := &memCreds{token: "tok-old"}
	c := newTestClient(t, ts, creds)

	got, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, int32(2), atomic.LoadInt32(&productCalls), "original + one retry")
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

	tok, _ := creds.Get(context.Background())
	assert.Equal(t, "tok-new", tok, "rotated token persisted")
}

func TestDo_SecondUnauthorizedPropagatesWithoutSecondRefresh(t *testing.T) {
	var productCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&productCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, authResponse{AccessToken: "tok-new"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{token: "tok-old"})

	_, err := c.ListProducts(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, int32(2), atomic.LoadInt32(&productCalls), "exactly two calls to the protected endpoint")
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "exactly one refresh")
}

func TestDo_RefreshFailureSurfacesSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{token: "tok-old"})

	_, err := c.ListProducts(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestDo_ConcurrentRefreshesCoalesce(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []models.Product{})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(100 * time.Millisecond) // keep the refresh in flight
		writeJSON(w, authResponse{AccessToken: "tok-new"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{token: "tok-old"})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListProducts(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "parallel 401s share one refresh")
}

func TestDo_ExpiredJWTRefreshedBeforeDispatch(t *testing.T) {
	var refreshCalls int32
	var sawExpiredToken int32

	expired := signedJWT(t, time.Now().Add(-time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+expired {
			atomic.AddInt32(&sawExpiredToken, 1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []models.Product{})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, authResponse{AccessToken: "tok-fresh"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{token: expired})

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(&sawExpiredToken), "stale token never leaves the client")
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

// ---- misc endpoints ----

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("OK"))
			},
			wantErr: nil,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: ErrUnavailable,
		},
		{
			name: "unexpected body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("degraded"))
			},
			wantErr: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			c := newTestClient(t, ts, &memCreds{})
			err := c.Health(context.Background())
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{token: "tok"})
	_, err := c.GetProduct(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnauthenticatedRequestWhenSlotEmpty(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, []models.Category{})
	}))
	defer ts.Close()

	c := newTestClient(t, ts, &memCreds{})
	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "empty slot sends no bearer header")
}
