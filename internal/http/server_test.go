package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"vibeledger/internal/auth"
	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
	"vibeledger/internal/storage"
	syncpkg "vibeledger/internal/sync"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	hub := syncpkg.NewHub()
	logger := log.NewTestLogger()
	authSvc := auth.NewService(store, "test-secret-0123456789", time.Hour, logger)
	ledgerSvc := ledger.NewService(store, nil, hub, logger)
	if opts.PostsPerMin == 0 {
		opts.PostsPerMin = 1000
	}
	s := NewServer(":0", authSvc, ledgerSvc, hub, logger, opts)
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

// signUp registers an account and returns the session cookie.
func signUp(t *testing.T, s *Server, email string) *http.Cookie {
	t.Helper()
	form := url.Values{
		"email":        {email},
		"password":     {"hunter2hunter2"},
		"display_name": {"Maria's Bakery"},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil
}

func postForm(s *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestSignUpSignOutSignIn(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	if rec := get(s, "/dashboard", cookie); rec.Code != http.StatusOK {
		t.Errorf("dashboard with session = %d, want 200", rec.Code)
	}

	rec := postForm(s, "/auth/signin", url.Values{
		"email":    {"maria@example.com"},
		"password": {"hunter2hunter2"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("signin status = %d", rec.Code)
	}
	if rec.Header().Get("HX-Redirect") != "/dashboard" {
		t.Error("signin should redirect to the dashboard")
	}

	rec = postForm(s, "/auth/signin", url.Values{
		"email":    {"maria@example.com"},
		"password": {"wrong-password"},
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := postForm(s, "/auth/signup", url.Values{
		"email":    {"maria@example.com"},
		"password": {"short"},
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(s, "/dashboard", nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("browser request status = %d, want 303", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/ui/metrics", nil)
	req.Header.Set("HX-Request", "true")
	htmx := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(htmx, req)
	if htmx.Code != http.StatusUnauthorized {
		t.Errorf("htmx request status = %d, want 401", htmx.Code)
	}
	if htmx.Header().Get("HX-Redirect") != "/" {
		t.Error("htmx request should carry an HX-Redirect")
	}
}

func TestCreateTransactionSuccess(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	rec := postForm(s, "/transactions", url.Values{
		"kind":        {"income"},
		"category":    {"sales"},
		"amount":      {"20.00"},
		"description": {"two cakes"},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	trigger := rec.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "transaction:created") {
		t.Errorf("HX-Trigger = %q, want transaction:created", trigger)
	}
	if !strings.Contains(trigger, "form:reset") {
		t.Errorf("HX-Trigger = %q, want form:reset", trigger)
	}

	list := get(s, "/ui/recent", cookie)
	if !strings.Contains(list.Body.String(), "two cakes") {
		t.Error("recent list does not show the new transaction")
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	tests := []struct {
		name string
		form url.Values
	}{
		{"category mismatch", url.Values{
			"kind": {"income"}, "category": {"transport"},
			"amount": {"20.00"}, "description": {"x"},
		}},
		{"negative amount", url.Values{
			"kind": {"expense"}, "category": {"food"},
			"amount": {"-5"}, "description": {"x"},
		}},
		{"zero amount", url.Values{
			"kind": {"expense"}, "category": {"food"},
			"amount": {"0"}, "description": {"x"},
		}},
		{"empty description", url.Values{
			"kind": {"income"}, "category": {"sales"},
			"amount": {"20.00"}, "description": {"   "},
		}},
		{"unknown kind", url.Values{
			"kind": {"transfer"}, "category": {"sales"},
			"amount": {"20.00"}, "description": {"x"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(s, "/transactions", tt.form, cookie)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422 (body: %s)", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `class="error"`) {
				t.Error("expected an inline error fragment")
			}
		})
	}
}

func TestMetricsPartialReflectsRecords(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	postForm(s, "/transactions", url.Values{
		"kind": {"income"}, "category": {"sales"},
		"amount": {"20.00"}, "description": {"cakes"},
	}, cookie)
	postForm(s, "/transactions", url.Values{
		"kind": {"expense"}, "category": {"supplies"},
		"amount": {"5.00"}, "description": {"flour"},
	}, cookie)

	rec := get(s, "/ui/metrics", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "$20.00") {
		t.Errorf("metrics missing income total: %s", body)
	}
	if !strings.Contains(body, "$15.00") {
		t.Errorf("metrics missing profit: %s", body)
	}
}

func TestMetricsAreOwnerScoped(t *testing.T) {
	s := newTestServer(t, Options{})
	maria := signUp(t, s, "maria@example.com")
	joe := signUp(t, s, "joe@example.com")

	postForm(s, "/transactions", url.Values{
		"kind": {"income"}, "category": {"sales"},
		"amount": {"20.00"}, "description": {"cakes"},
	}, maria)

	rec := get(s, "/ui/recent", joe)
	if strings.Contains(rec.Body.String(), "cakes") {
		t.Error("another owner's transaction leaked into the list")
	}
}

func TestPanelLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	rec := postForm(s, "/panel/activate", url.Values{"panel": {"manual"}}, cookie)
	if !strings.Contains(rec.Body.String(), "panel--manual") {
		t.Error("expected the manual panel")
	}

	// Opening another panel replaces the first.
	rec = postForm(s, "/panel/activate", url.Values{"panel": {"voice"}}, cookie)
	if !strings.Contains(rec.Body.String(), "panel--voice") {
		t.Error("expected the voice panel")
	}

	rec = postForm(s, "/panel/close", url.Values{}, cookie)
	if !strings.Contains(rec.Body.String(), "panel--closed") {
		t.Error("expected the closed placeholder")
	}

	// Unknown panel names just close everything.
	rec = postForm(s, "/panel/activate", url.Values{"panel": {"bogus"}}, cookie)
	if !strings.Contains(rec.Body.String(), "panel--closed") {
		t.Error("unknown panel should render closed")
	}
}

func multipartBody(t *testing.T, field, filename string, payload []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

type fakeVoice struct {
	suggestion core.Suggested
	err        error
}

func (f *fakeVoice) FromAudio(ctx context.Context, audio io.Reader, filename string) (core.Suggested, error) {
	return f.suggestion, f.err
}

func TestVoiceUploadPrefillsManualPanel(t *testing.T) {
	s := newTestServer(t, Options{
		Voice: &fakeVoice{suggestion: core.Suggested{
			Kind:        core.KindIncome,
			Category:    core.CategorySales,
			AmountText:  "20.00",
			Description: "sold two cakes",
			Source:      "voice",
		}},
	})
	cookie := signUp(t, s, "maria@example.com")

	body, contentType := multipartBody(t, "audio", "note.webm", []byte("fake-audio"))
	req := httptest.NewRequest(http.MethodPost, "/voice", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	got := rec.Body.String()
	if !strings.Contains(got, "panel--manual") {
		t.Error("expected the manual panel with the pre-fill")
	}
	if !strings.Contains(got, "sold two cakes") || !strings.Contains(got, "20.00") {
		t.Error("pre-fill values missing from the form")
	}
}

func TestVoiceUploadUnconfigured(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	body, contentType := multipartBody(t, "audio", "note.webm", []byte("fake-audio"))
	req := httptest.NewRequest(http.MethodPost, "/voice", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestIndexRedirectsSignedInUsers(t *testing.T) {
	s := newTestServer(t, Options{})
	cookie := signUp(t, s, "maria@example.com")

	rec := get(s, "/", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("status = %d location = %q, want 303 to /dashboard", rec.Code, rec.Header().Get("Location"))
	}

	anon := get(s, "/", nil)
	if anon.Code != http.StatusOK {
		t.Errorf("anonymous index status = %d, want 200", anon.Code)
	}
	if !strings.Contains(anon.Body.String(), "Sign in") {
		t.Error("index should show the auth card")
	}
}

func TestAuthToggleFlipsCard(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := postForm(s, "/auth/toggle", url.Values{"mode": {"sign_in"}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Create your account") {
		t.Error("toggling from sign-in should show the sign-up form")
	}

	rec = postForm(s, "/auth/toggle", url.Values{"mode": {"sign_up"}}, nil)
	if !strings.Contains(rec.Body.String(), `hx-post="/auth/signin"`) {
		t.Error("toggling from sign-up should show the sign-in form")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(s, path, nil); rec.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, rec.Code)
		}
	}
}
