package http

import (
	"errors"
	"net/http"

	"gofinance/internal/core"
	"gofinance/internal/live"
	"gofinance/internal/log"
	"gofinance/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

// parseBody answers 400 or 413 itself and reports whether to continue.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
			return nil, false
		}
		BadRequestError("invalid request body").Write(w)
		return nil, false
	}
	return p, true
}

// handleSignIn stores the profile. The header identity wins over a body id.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	user := p.User()
	if id := headerUserID(r); id != "" {
		user.ID = id
	}
	if err := s.svc.SignIn(r.Context(), user); err != nil {
		writeError(w, r, log.OpSignIn, err)
		return
	}
	NewJSONResponse().Body(user).Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, user core.User) {
	NewJSONResponse().Body(user).Write(w)
}

// handleSignOut is idempotent: signing out twice is not an error.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	userID := headerUserID(r)
	if userID == "" {
		UnauthorizedError("missing " + HeaderUserID + " header").Write(w)
		return
	}
	if err := s.svc.SignOut(r.Context(), userID); err != nil {
		writeError(w, r, log.OpSignOut, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, user core.User) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Register(r.Context(), user.ID, p.NewTransaction())
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/transactions/"+tx.ID).
		Body(tx).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, user core.User) {
	txs, err := s.svc.Transactions(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, user core.User) {
	tx, err := s.svc.Transaction(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user core.User) {
	d, err := s.svc.Dashboard(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, log.OpDashboard, err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

type resumeResponse struct {
	core.Breakdown
	Prev core.Period `json:"prev"`
	Next core.Period `json:"next"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, user core.User) {
	period := ParsePeriodParams(r.URL.Query(), s.svc.CurrentPeriod())
	b, err := s.svc.Resume(r.Context(), user.ID, period)
	if err != nil {
		writeError(w, r, log.OpResume, err)
		return
	}
	NewJSONResponse().Body(resumeResponse{Breakdown: b, Prev: period.Prev(), Next: period.Next()}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.svc.Catalog().Categories()).Write(w)
}

// handleLive upgrades to a websocket, sends the current dashboard and then
// relays every refreshed dashboard until the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request, user core.User) {
	d, err := s.svc.Dashboard(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, log.OpDashboard, err)
		return
	}
	conn, err := live.Upgrade(w, r)
	if err != nil {
		// The upgrader already wrote the error response.
		return
	}
	s.hub.Serve(conn, user.ID, &live.Event{Type: services.EventDashboard, Data: d})
}
