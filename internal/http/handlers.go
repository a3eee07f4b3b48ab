package http

import (
	"errors"
	"net/http"
	"time"

	applog "gofinances/internal/log"
	"gofinances/internal/services"
	"gofinances/internal/session"
)

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withUser rejects requests without a user id with 401.
func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
			return
		}
		next(w, r, id)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.finance.Categories()})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.finance.Transactions(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, "list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": list})
}

type createTransactionRequest struct {
	Name     string         `json:"name"`
	Amount   flexibleAmount `json:"amount"`
	Type     string         `json:"type"`
	Category string         `json:"category"`
	Date     string         `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.finance.CreateTransaction(r.Context(), userID, services.NewTransaction{
		Name:     sanitizeInput(req.Name),
		Amount:   string(req.Amount),
		Type:     req.Type,
		Category: req.Category,
		Date:     req.Date,
	})
	if services.IsValidationError(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, "create transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.finance.ClearTransactions(r.Context(), userID); err != nil {
		s.internalError(w, r, "clear transactions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID string) {
	d, err := s.finance.Dashboard(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, userID string) {
	year, month, err := parseYearMonth(r, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.finance.Resume(r.Context(), userID, year, month)
	if err != nil {
		s.internalError(w, r, "resume", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, userID string) {
	u, ok, err := s.sessions.Current(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, "load session", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleSignIn stores the profile of the calling user. The body id may be
// omitted; when present it must match the user header.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request, userID string) {
	var u session.User
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u.ID, u.Name, u.Email = sanitizeInput(u.ID), sanitizeInput(u.Name), sanitizeInput(u.Email)
	if u.ID == "" {
		u.ID = userID
	}
	if u.ID != userID {
		writeError(w, http.StatusForbidden, "session id does not match "+userHeader)
		return
	}

	err := s.sessions.SignIn(r.Context(), u)
	if errors.Is(err, session.ErrInvalidUser) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, "sign in", err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User signed in", applog.FieldUserID, u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.sessions.SignOut(r.Context(), userID); err != nil {
		s.internalError(w, r, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, nil)
	writeError(w, http.StatusInternalServerError, "internal error")
}
