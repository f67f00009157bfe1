package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"orcamento/internal/backend"
	applog "orcamento/internal/log"
	"orcamento/internal/middleware/ratelimit"
	"orcamento/internal/middleware/security"
	"orcamento/internal/middleware/trace"
	"orcamento/internal/services"
)

// Options configures a Server.
type Options struct {
	Logger *applog.Logger
	// Ready is checked by /readyz; nil means always ready.
	Ready              backend.Pinger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	svc     *services.BudgetService
	ready   backend.Pinger
	logger  *applog.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	started time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, svc *services.BudgetService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		svc:     svc,
		ready:   opts.Ready,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(logger, security.ClientIP),
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/signout", s.withSession(s.handleSignOut))
	mux.HandleFunc("POST /api/auth/reset", s.handlePasswordReset)
	mux.HandleFunc("GET /api/icons", s.handleIcons)

	mux.HandleFunc("GET /api/budget", s.withSession(s.handleBudget))
	mux.HandleFunc("GET /api/budget/summary", s.withSession(s.handleSummary))
	mux.HandleFunc("PUT /api/budget/salary", s.withSession(s.handleSetSalary))
	mux.HandleFunc("POST /api/budget/reset", s.withSession(s.handleResetBudget))
	mux.HandleFunc("POST /api/budget/save", s.withSession(s.handleSave))
	mux.HandleFunc("POST /api/budget/tips", s.withSession(s.handleTips))

	mux.HandleFunc("POST /api/budget/fixed-expenses", s.withSession(s.handleAddFixedExpense))
	mux.HandleFunc("PATCH /api/budget/fixed-expenses/{id}", s.withSession(s.handleUpdateFixedExpense))
	mux.HandleFunc("DELETE /api/budget/fixed-expenses/{id}", s.withSession(s.handleDeleteFixedExpense))
	mux.HandleFunc("POST /api/budget/one-time-expenses", s.withSession(s.handleAddOneTimeExpense))
	mux.HandleFunc("DELETE /api/budget/one-time-expenses/{id}", s.withSession(s.handleDeleteOneTimeExpense))
	mux.HandleFunc("POST /api/budget/one-time-gains", s.withSession(s.handleAddOneTimeGain))
	mux.HandleFunc("DELETE /api/budget/one-time-gains/{id}", s.withSession(s.handleDeleteOneTimeGain))
	mux.HandleFunc("POST /api/budget/investments", s.withSession(s.handleAddInvestment))
	mux.HandleFunc("DELETE /api/budget/investments/{id}", s.withSession(s.handleDeleteInvestment))
	mux.HandleFunc("POST /api/budget/goals", s.withSession(s.handleAddGoal))
	mux.HandleFunc("DELETE /api/budget/goals/{id}", s.withSession(s.handleDeleteGoal))

	var h http.Handler = mux
	h = s.limiter.Middleware(security.ClientIP, ratelimit.MutatingOnly, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})(h)
	h = applog.Middleware(logger, trace.RequestIDFromRequest)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// sessionHandler is a handler that runs with a resolved session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *services.Session)

// withSession resolves the bearer token and rejects the request with 401 when
// no live session matches it.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.svc.Session(bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := applog.WithLogger(r.Context(), applog.FromContext(r.Context()).With(applog.FieldUserID, sess.UserID))
		next(w, r.WithContext(ctx), sess)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
