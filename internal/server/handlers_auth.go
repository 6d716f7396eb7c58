package server

import (
	"net/http"

	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.Auth.Signup(r.Context(), req, requestLanguage(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.Auth.Login(r.Context(), req, requestLanguage(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := s.Auth.Logout(r.Context(), sess.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMapsConfig hands the map backend to the UI. A Google backend
// without key is reported as unavailable.
func (s *Server) handleMapsConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.MapsConfig
	if cfg.Backend == mapview.BackendGoogle && cfg.APIKey == "" {
		s.writeError(w, r, mapview.ErrMissingAPIKey)
		return
	}
	if cfg.Backend != mapview.BackendGoogle {
		cfg.APIKey = ""
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess.Selection != "" {
		if _, err := s.Sync.Refresh(r.Context(), sess); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req api.LanguageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !i18n.Supported(req.Language) {
		s.writeError(w, r, errUnsupported)
		return
	}

	sess := sessionFromContext(r.Context())
	sess.SetLanguage(req.Language)
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}
