package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/inflight"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

// backendStub plays the external REST backend and records every call the
// gateway forwards to it.
type backendStub struct {
	mu    sync.Mutex
	calls []string
	mux   *http.ServeMux
}

func newBackendStub(t *testing.T) (*backendStub, *httptest.Server) {
	t.Helper()

	s := &backendStub{mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		s.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *backendStub) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
}

func (s *backendStub) callCount(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (s *backendStub) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// meHandler answers /auth/me for a fixed identity.
func meHandler(id uint, email string, isAdmin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"id":       id,
			"email":    email,
			"username": "tester",
			"is_admin": isAdmin,
		})
		respondJSON(w, http.StatusOK, string(body))
	}
}

type testEnv struct {
	E        *echo.Echo
	Stub     *backendStub
	Guard    *inflight.Guard
	Sessions *session.Store
	Bus      *session.Bus
	Events   *[]session.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stub, srv := newBackendStub(t)

	bus := session.NewBus()
	var seen []session.Event
	bus.Subscribe(func(e session.Event) { seen = append(seen, e) })

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"), bus)
	require.NoError(t, err)

	guard := inflight.New()
	e := echo.New()
	Register(e, &Deps{
		Backend:  backend.NewClient(srv.URL),
		Sessions: store,
		Bus:      bus,
		Guard:    guard,
	})

	return &testEnv{E: e, Stub: stub, Guard: guard, Sessions: store, Bus: bus, Events: &seen}
}

func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Error)
	return body.Error
}

func containsCall(s *backendStub, substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}
