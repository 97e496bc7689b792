package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gofinance/internal/core"
	"gofinance/internal/kv"
	"gofinance/internal/live"
	"gofinance/internal/log"
	"gofinance/internal/middleware/ratelimit"
	"gofinance/internal/middleware/security"
	"gofinance/internal/middleware/trace"
	"gofinance/internal/services"
)

// HeaderUserID carries the caller identity established by the identity
// provider in front of this API.
const HeaderUserID = "X-User-ID"

// FinanceService is what the handlers need from the service layer.
type FinanceService interface {
	SignIn(ctx context.Context, u core.User) error
	SignOut(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (core.User, error)
	Register(ctx context.Context, userID string, in core.NewTransaction) (core.Transaction, error)
	Dashboard(ctx context.Context, userID string) (services.Dashboard, error)
	Transaction(ctx context.Context, userID, id string) (core.Transaction, error)
	Transactions(ctx context.Context, userID string) ([]core.ListedTransaction, error)
	Resume(ctx context.Context, userID string, period core.Period) (core.Breakdown, error)
	CurrentPeriod() core.Period
	Catalog() core.Catalog
}

// Options configures optional server collaborators.
type Options struct {
	// Ready is pinged by /readyz; nil means always ready.
	Ready kv.Pinger
	// Hub serves /live; nil disables the route.
	Hub                *live.Hub
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc      FinanceService
	ready    kv.Pinger
	hub      *live.Hub
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc FinanceService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		svc:      svc,
		ready:    opts.Ready,
		hub:      opts.Hub,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("PUT /session", s.handleSignIn)
	mux.HandleFunc("GET /session", s.requireSession(headerUserID, s.handleSession))
	mux.HandleFunc("DELETE /session", s.handleSignOut)

	register := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})
	mux.Handle("POST /transactions", register(s.requireSession(headerUserID, s.handleCreateTransaction)))
	mux.HandleFunc("GET /transactions", s.requireSession(headerUserID, s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.requireSession(headerUserID, s.handleGetTransaction))
	mux.HandleFunc("GET /dashboard", s.requireSession(headerUserID, s.handleDashboard))
	mux.HandleFunc("GET /resume", s.requireSession(headerUserID, s.handleResume))
	mux.HandleFunc("GET /categories", s.handleCategories)
	if s.hub != nil {
		mux.HandleFunc("GET /live", s.requireSession(liveUserID, s.handleLive))
	}

	var h http.Handler = mux
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = log.AccessLog(s.detector.ExtractClientIP)(h)
	h = log.RequestIDMiddleware(trace.FromRequest)(h)
	h = log.Middleware(logger)(h)
	h = trace.Middleware(h)
	s.Handler = h

	return s
}

// Shutdown stops the limiter cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	m := s.limiter.GetMetrics()
	s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown,
		"rate_limit_hits", m.TotalHits, "rate_limit_clients", m.ClientCount)
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, user core.User)

// requireSession answers 401 unless the caller has an active session.
func (s *Server) requireSession(identify func(*http.Request) string, next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := identify(r)
		if userID == "" {
			UnauthorizedError("missing " + HeaderUserID + " header").Write(w)
			return
		}
		user, err := s.svc.CurrentUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, log.OpRead, err)
			return
		}
		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldUserID, user.ID))
		next(w, r.WithContext(ctx), user)
	}
}

func headerUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}

// liveUserID also accepts ?user_id= since browsers cannot set headers on a
// websocket handshake.
func liveUserID(r *http.Request) string {
	if id := headerUserID(r); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}
