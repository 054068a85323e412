package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Client   string `json:"client"`
}

type loginResponse struct {
	Token  string     `json:"token"`
	Expiry string     `json:"expiry,omitempty"`
	User   *loginUser `json:"user,omitempty"`
}

type loginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	res, err := s.engine.Login(r.Context(), req.Username, req.Password, req.Client)
	if err != nil {
		switch {
		case errors.Is(err, tokengate.ErrClientRequired):
			writeDetail(w, http.StatusBadRequest, "No client specified.")
		case errors.Is(err, tokengate.ErrUnknownClient):
			writeDetail(w, http.StatusBadRequest, "No client with that name.")
		case errors.Is(err, tokengate.ErrInvalidCredentials),
			errors.Is(err, tokengate.ErrUserInactive):
			writeDetail(w, http.StatusBadRequest, "Unable to log in with provided credentials.")
		default:
			s.serverError(w, "login", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:  res.Token,
		Expiry: s.engine.FormatExpiry(res.Expiry),
		User:   &loginUser{ID: res.User.ID, Username: res.User.Username},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	updated, err := s.engine.Renew(r.Context(), mustAuth(r))
	if err != nil {
		s.serverError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"expiry": s.engine.FormatExpiry(updated.Expiry),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(r.Context(), mustAuth(r)); err != nil {
		s.serverError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.LogoutAll(r.Context(), mustAuth(r)); err != nil {
		s.serverError(w, "logoutall", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	ID           string `json:"id"`
	Client       string `json:"client"`
	Created      string `json:"created"`
	Expiry       string `json:"expiry,omitempty"`
	HasExpired   bool   `json:"has_expired"`
	IsCurrent    bool   `json:"is_current"`
	ExpiresInStr string `json:"expires_in_str"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.engine.ListSessions(r.Context(), mustAuth(r))
	if err != nil {
		s.serverError(w, "sessions", err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse{
			ID:           sess.ID,
			Client:       sess.Client,
			Created:      s.engine.FormatExpiry(sess.Created),
			Expiry:       s.engine.FormatExpiry(sess.Expiry),
			HasExpired:   sess.HasExpired,
			IsCurrent:    sess.IsCurrent,
			ExpiresInStr: sess.ExpiresInStr,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	err := s.engine.RevokeSession(r.Context(), mustAuth(r), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, tokengate.ErrRevokeCurrent):
			writeDetail(w, http.StatusBadRequest, "Cannot delete the current session. Use logout instead.")
		case errors.Is(err, store.ErrTokenNotFound):
			writeDetail(w, http.StatusNotFound, "Not found.")
		default:
			s.serverError(w, "revoke_session", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type apiAccessResponse struct {
	HasAccess bool   `json:"has_api_access"`
	Token     string `json:"token,omitempty"`
	Expiry    string `json:"expiry,omitempty"`
}

func (s *Server) handleGetAPIAccess(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.GetAPIAccess(r.Context(), mustAuth(r))
	if err != nil {
		if errors.Is(err, tokengate.ErrAPIAccessNotConfigured) {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.serverError(w, "apiaccess_get", err)
		return
	}
	if !info.HasAccess {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, apiAccessResponse{
		HasAccess: true,
		Token:     info.Token,
		Expiry:    info.Expiry,
	})
}

func (s *Server) handleCreateAPIAccess(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.CreateAPIAccess(r.Context(), mustAuth(r))
	if err != nil {
		switch {
		case errors.Is(err, tokengate.ErrAPIAccessExists):
			writeDetail(w, http.StatusBadRequest, "An API token was already issued to you.")
		case errors.Is(err, tokengate.ErrAPIAccessNotConfigured):
			writeDetail(w, http.StatusNotFound, "Not found.")
		default:
			s.serverError(w, "apiaccess_create", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, apiAccessResponse{
		HasAccess: true,
		Token:     info.Token,
		Expiry:    info.Expiry,
	})
}

func (s *Server) handleDeleteAPIAccess(w http.ResponseWriter, r *http.Request) {
	err := s.engine.DeleteAPIAccess(r.Context(), mustAuth(r))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTokenNotFound),
			errors.Is(err, tokengate.ErrAPIAccessNotConfigured):
			writeDetail(w, http.StatusNotFound, "Not found.")
		default:
			s.serverError(w, "apiaccess_delete", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
