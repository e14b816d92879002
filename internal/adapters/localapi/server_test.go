package localapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rideshare-app/rideshare-client/internal/adapters/localapi"
	memcredstore "github.com/rideshare-app/rideshare-client/internal/adapters/memory/credstore"
	memgateway "github.com/rideshare-app/rideshare-client/internal/adapters/memory/gateway"
	"github.com/rideshare-app/rideshare-client/internal/app/lifecycle"
	"github.com/rideshare-app/rideshare-client/internal/app/route"
	"github.com/rideshare-app/rideshare-client/internal/app/session"
	"github.com/rideshare-app/rideshare-client/internal/app/suggest"
	clockadapter "github.com/rideshare-app/rideshare-client/internal/platform/clock"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
)

type testStack struct {
	handler http.Handler
	gw      *memgateway.Client
	creds   *memcredstore.Store
	clk     *clockadapter.Manual
	control *lifecycle.Controller
	origin  *suggest.Fetcher
}

type silentNotifier struct{}

func (silentNotifier) Notify(string, string) {}

func newStack(t *testing.T) *testStack {
	t.Helper()
	gw := memgateway.NewClient()
	creds := memcredstore.NewStore()
	clk := clockadapter.NewManual(time.Unix(1700000000, 0))
	log := logger.NewNop()

	control := lifecycle.NewController(lifecycle.Deps{
		Gateway:  gw,
		Creds:    creds,
		Routes:   route.NewResolver(gw, log),
		Clock:    clk,
		Notifier: silentNotifier{},
		Log:      log,
	})
	origin := suggest.NewFetcher(gw, clk, log)
	destination := suggest.NewFetcher(gw, clk, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go control.Run(ctx)
	go origin.Run(ctx)
	go destination.Run(ctx)

	sessions := session.NewService(gw, creds, log)
	srv := localapi.NewServer(sessions, control, origin, destination, log)

	return &testStack{
		handler: localapi.NewRouter(srv),
		gw:      gw,
		creds:   creds,
		clk:     clk,
		control: control,
		origin:  origin,
	}
}

func (s *testStack) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

type errorResponse struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"request_id"`
	} `json:"error"`
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStateStartsBootstrapping(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodGet, "/v1/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("state = %d, want 200", rec.Code)
	}
	var out struct {
		State   string            `json:"state"`
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if out.State != "BOOTSTRAPPING" {
		t.Fatalf("state = %q, want BOOTSTRAPPING", out.State)
	}
	if out.Matches == nil {
		t.Fatal("matches must serialize as an empty array, not null")
	}
}

func TestRegisterValidationError(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/session/register",
		`{"email": "nope", "age": 0, "gender": "x", "password": "short"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("register = %d, want 422", rec.Code)
	}
	var out errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if out.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", out.Error.Code)
	}
	if len(out.Error.Details) == 0 {
		t.Fatal("validation details missing")
	}
	if out.Error.RequestID == "" {
		t.Fatal("request id missing from error body")
	}
}

func TestLoginStoresTokenAndAdvancesState(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/session/login",
		`{"email": "rider@example.com", "password": "pw-123456"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("login = %d, want 204", rec.Code)
	}
	if tok, _ := s.creds.Get(context.Background()); tok != "test-token" {
		t.Fatalf("stored token = %q", tok)
	}
	waitFor(t, "controller to leave the auth flow", func() bool {
		return s.control.Snapshot().State == lifecycle.StateComposing
	})
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()
	s := newStack(t)
	_ = s.creds.Set(context.Background(), "tok")

	rec := s.request(t, http.MethodPost, "/v1/session/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d, want 204", rec.Code)
	}
	if tok, _ := s.creds.Get(context.Background()); tok != "" {
		t.Fatalf("stored token = %q, want cleared", tok)
	}
	waitFor(t, "controller to return to the auth flow", func() bool {
		return s.control.Snapshot().State == lifecycle.StateUnauthenticated
	})
}

func TestQueryFeedsFetcher(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/draft/origin/query", `{"text": "Lek"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("query = %d, want 202", rec.Code)
	}
	waitFor(t, "fetcher to observe the keystroke", func() bool {
		return s.origin.Snapshot().Query == "Lek"
	})

	rec = s.request(t, http.MethodGet, "/v1/draft/origin/suggestions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions = %d, want 200", rec.Code)
	}
	var out struct {
		Query       string            `json:"query"`
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode suggestions: %v", err)
	}
	if out.Query != "Lek" {
		t.Fatalf("query = %q, want %q", out.Query, "Lek")
	}
	if out.Suggestions == nil {
		t.Fatal("suggestions must serialize as an empty array, not null")
	}
}

func TestSubmitRejectsMalformedTime(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/trip/submit", `{"time": "tomorrow"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit = %d, want 422", rec.Code)
	}
	var out errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if out.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", out.Error.Code)
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/session/register", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("register = %d, want 400", rec.Code)
	}
}

func TestSelectEndpointAccepted(t *testing.T) {
	t.Parallel()
	s := newStack(t)

	rec := s.request(t, http.MethodPost, "/v1/draft/origin/select",
		`{"name": "Ikeja", "latitude": 6.6018, "longitude": 3.3515}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("select = %d, want 202", rec.Code)
	}
}
