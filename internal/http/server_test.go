package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orcamento/internal/auth"
	"orcamento/internal/core"
	applog "orcamento/internal/log"
	"orcamento/internal/services"
	"orcamento/internal/store"
	"orcamento/internal/store/memory"
	"orcamento/internal/tips"

	"golang.org/x/crypto/bcrypt"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	mem := memory.New()
	svc := services.NewBudgetService(mem, auth.NewLocal(mem, bcrypt.MinCost), tips.NewStatic(), nil,
		services.Config{SaveMode: services.SaveModeManual, SessionTTL: time.Hour}, testLogger())
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func signUp(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Ana","email":"`+email+`","password":"secret123","confirmPassword":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decodeBody[sessionView](t, rec)
	if view.Token == "" {
		t.Fatal("signup returned no token")
	}
	return view.Token
}

type summaryBody struct {
	Summary core.BudgetSnapshot `json:"summary"`
}

func remaining(t *testing.T, srv *Server, token string) float64 {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/api/budget/summary", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[summaryBody](t, rec).Summary.RemainingBalance
}

func TestBudgetFlow(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signUp(t, srv, "ana@example.com")

	if rec := do(t, srv, http.MethodPut, "/api/budget/salary", token, `{"salary":5000}`); rec.Code != http.StatusOK {
		t.Fatalf("salary status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := remaining(t, srv, token); got != 5000 {
		t.Errorf("remaining after salary = %v, want 5000", got)
	}

	rec := do(t, srv, http.MethodPost, "/api/budget/one-time-expenses", token, `{"name":"Café","value":"50,00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody[services.Result](t, rec)
	if len(res.Data.OneTimeExpenses) != 1 || res.Data.OneTimeExpenses[0].Value != 50 {
		t.Fatalf("one-time expenses = %+v", res.Data.OneTimeExpenses)
	}
	if got := remaining(t, srv, token); got != 4950 {
		t.Errorf("remaining after expense = %v, want 4950", got)
	}

	rec = do(t, srv, http.MethodPost, "/api/budget/investments", token, `{"name":"CDB","amount":200,"cdiPercentage":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("investment status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := remaining(t, srv, token); got != 4750 {
		t.Errorf("remaining after investment = %v, want 4750", got)
	}

	expenseID := res.Data.OneTimeExpenses[0].ID
	if rec := do(t, srv, http.MethodDelete, "/api/budget/one-time-expenses/"+expenseID, token, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := remaining(t, srv, token); got != 4800 {
		t.Errorf("remaining after delete = %v, want 4800", got)
	}

	if rec := do(t, srv, http.MethodPost, "/api/budget/save", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, srv, http.MethodPost, "/api/auth/signout", token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("signout status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/budget", token, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("budget after signout status = %d, want 401", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/auth/signin", "", `{"email":"ANA@example.com","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decodeBody[sessionView](t, rec)
	if view.Data.Salary != 5000 || len(view.Data.Investments) != 1 {
		t.Errorf("reloaded data = %+v", view.Data)
	}
}

func TestFixedExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signUp(t, srv, "bia@example.com")
	do(t, srv, http.MethodPut, "/api/budget/salary", token, `{"salary":"4.000,00"}`)

	rec := do(t, srv, http.MethodPost, "/api/budget/fixed-expenses", token, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	added := decodeBody[struct {
		Category core.FixedExpenseCategory `json:"category"`
	}](t, rec)
	id := added.Category.ID

	rec = do(t, srv, http.MethodPatch, "/api/budget/fixed-expenses/"+id, token,
		`{"name":"Academia","allocationType":"PERCENTAGE","value":"10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := remaining(t, srv, token); got != 3600 {
		t.Errorf("remaining = %v, want 3600", got)
	}

	if rec := do(t, srv, http.MethodPatch, "/api/budget/fixed-expenses/missing", token, `{"name":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("patch missing status = %d, want 404", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/budget/fixed-expenses/"+id, token, ""); rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	if got := remaining(t, srv, token); got != 4000 {
		t.Errorf("remaining after delete = %v, want 4000", got)
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signUp(t, srv, "caio@example.com")

	rec := do(t, srv, http.MethodPost, "/api/budget/one-time-expenses", token, `{"name":"Café","value":"abc"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decodeBody[errorBody](t, rec)
	if body.Form != core.FormOneTimeExpense || body.Field != "value" || body.Error == "" {
		t.Errorf("error body = %+v", body)
	}

	rec = do(t, srv, http.MethodPost, "/api/budget/goals", token, `{"name":"Viagem","targetAmount":1000,"deadline":"2000-01-01"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("goal status = %d, want 422", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Field != "deadline" {
		t.Errorf("goal error field = %q, want deadline", body.Field)
	}

	rec = do(t, srv, http.MethodPost, "/api/budget/investments", token, `{"name":"CDB","amount":100,"cdiPercentage":250}`)
	if body := decodeBody[errorBody](t, rec); rec.Code != http.StatusUnprocessableEntity || body.Field != "cdiPercentage" {
		t.Errorf("investment status = %d, body %+v", rec.Code, body)
	}
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	signUp(t, srv, "duda@example.com")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"duplicate email", "/api/auth/signup", `{"name":"Duda","email":"duda@example.com","password":"secret123","confirmPassword":"secret123"}`, http.StatusConflict},
		{"password mismatch", "/api/auth/signup", `{"name":"Eva","email":"eva@example.com","password":"secret123","confirmPassword":"other123"}`, http.StatusUnprocessableEntity},
		{"wrong password", "/api/auth/signin", `{"email":"duda@example.com","password":"wrongpass"}`, http.StatusUnauthorized},
		{"malformed body", "/api/auth/signin", `{"email":`, http.StatusBadRequest},
		{"reset", "/api/auth/reset", `{"email":"nobody@example.com"}`, http.StatusAccepted},
		{"reset bad email", "/api/auth/reset", `{"email":"not-an-email"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, srv, http.MethodPost, tt.path, "", tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

// unreachableAuth fails every call the way an offline auth service does.
type unreachableAuth struct{}

var errDialRefused = errors.New("dial tcp 127.0.0.1:9999: connect: connection refused")

func (unreachableAuth) SignUp(context.Context, string, string, string) (store.Identity, error) {
	return store.Identity{}, errDialRefused
}

func (unreachableAuth) SignIn(context.Context, string, string) (store.Identity, error) {
	return store.Identity{}, errDialRefused
}

func (unreachableAuth) SignOut(context.Context, string) error { return errDialRefused }

func (unreachableAuth) RequestPasswordReset(context.Context, string) error { return errDialRefused }

func TestAuthServiceUnavailable(t *testing.T) {
	svc := services.NewBudgetService(memory.New(), unreachableAuth{}, tips.NewStatic(), nil,
		services.Config{SessionTTL: time.Hour}, testLogger())
	srv := NewServer(":0", svc, Options{Logger: testLogger()})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	tests := map[string]string{
		"/api/auth/signin": `{"email":"ana@example.com","password":"secret123"}`,
		"/api/auth/signup": `{"name":"Ana","email":"ana@example.com","password":"secret123","confirmPassword":"secret123"}`,
		"/api/auth/reset":  `{"email":"ana@example.com"}`,
	}
	for path, body := range tests {
		rec := do(t, srv, http.MethodPost, path, "", body)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("%s status = %d, want 502 (body %s)", path, rec.Code, rec.Body.String())
			continue
		}
		got := decodeBody[errorBody](t, rec)
		if got.Error != services.ErrAuthUnavailable.Error() || got.Notice == "" {
			t.Errorf("%s body = %+v", path, got)
		}
	}
}

func TestRequiresSession(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/api/budget", "/api/budget/summary"} {
		rec := do(t, srv, http.MethodGet, path, "bogus", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestSummaryRejectsInvalidPeriod(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signUp(t, srv, "fabi@example.com")

	for _, q := range []string{"?months=0x", "?months=-1"} {
		if rec := do(t, srv, http.MethodGet, "/api/budget/summary"+q, token, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, rec.Code)
		}
	}
	do(t, srv, http.MethodPut, "/api/budget/salary", token, `{"salary":1000}`)
	rec := do(t, srv, http.MethodGet, "/api/budget/summary?months=12", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[struct {
		Projection []core.ProjectionPoint `json:"projection"`
	}](t, rec)
	if len(body.Projection) != 12 {
		t.Errorf("projection points = %d, want 12", len(body.Projection))
	}
}

func TestTips(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signUp(t, srv, "gabi@example.com")

	rec := do(t, srv, http.MethodPost, "/api/budget/tips", token, "")
	body := decodeBody[services.TipsResult](t, rec)
	if rec.Code != http.StatusOK || len(body.Tips) != 0 || body.Notice == "" {
		t.Errorf("tips without income: status %d body %+v", rec.Code, body)
	}

	do(t, srv, http.MethodPut, "/api/budget/salary", token, `{"salary":3000}`)
	rec = do(t, srv, http.MethodPost, "/api/budget/tips", token, "")
	body = decodeBody[services.TipsResult](t, rec)
	if len(body.Tips) != tips.TipCount {
		t.Errorf("tips = %d, want %d", len(body.Tips), tips.TipCount)
	}
}

func TestRateLimitOnlyMutating(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 5; i++ {
		if rec := do(t, srv, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
			t.Fatalf("healthz status = %d", rec.Code)
		}
	}

	body := `{"email":"x@example.com","password":"whatever1"}`
	do(t, srv, http.MethodPost, "/api/auth/signin", "", body)
	do(t, srv, http.MethodPost, "/api/auth/signin", "", body)
	rec := do(t, srv, http.MethodPost, "/api/auth/signin", "", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestReadyz(t *testing.T) {
	ok := newTestServer(t, Options{Ready: pinger{}})
	if rec := do(t, ok, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	down := newTestServer(t, Options{Ready: pinger{err: io.ErrUnexpectedEOF}})
	if rec := do(t, down, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("not ready status = %d", rec.Code)
	}
}

func TestResponsesCarryRequestIDAndSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := do(t, srv, http.MethodGet, "/api/icons", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	body := decodeBody[struct {
		Icons []iconView `json:"icons"`
	}](t, rec)
	if len(body.Icons) != len(core.IconCatalogue)+1 {
		t.Errorf("icons = %d", len(body.Icons))
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, Options{})
	signUp(t, srv, "hana@example.com")
	rec := do(t, srv, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), "orcamento_sessions 1") {
		t.Errorf("metrics body:\n%s", rec.Body.String())
	}
}
