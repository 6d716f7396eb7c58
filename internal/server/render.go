package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rubiojr/fuelfinder/internal/auth"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/geocode"
	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/internal/ranking"
	"github.com/rubiojr/fuelfinder/internal/selection"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("unauthorized")
	errUnsupported  = errors.New("unsupported language")
)

var validate = validator.New()

// errorStatus maps an error to its HTTP status and localized message.
func errorStatus(err error, tr i18n.Translations) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, tr.InvalidCredentials
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, errUnauthorized),
		errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized, tr.Unauthorized
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict, tr.EmailInUse
	case errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest, tr.InvalidEmail
	case errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusBadRequest, tr.PasswordTooShort
	case errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest, tr.PasswordMismatch
	case errors.Is(err, auth.ErrNameRequired):
		return http.StatusBadRequest, tr.NameRequired
	case errors.Is(err, fueldb.ErrStationNotFound):
		return http.StatusNotFound, tr.StationNotFound
	case errors.Is(err, geocode.ErrLocationNotFound):
		return http.StatusNotFound, tr.LocationNotFound
	case errors.Is(err, selection.ErrNotInView):
		return http.StatusConflict, tr.NotInView
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, tr.InvalidRequest
	case errors.Is(err, fueldb.ErrInvalidReview):
		return http.StatusBadRequest, tr.ReviewError
	case errors.Is(err, errBadRequest),
		errors.Is(err, errUnsupported),
		errors.Is(err, geocode.ErrInvalidLocation),
		errors.Is(err, ranking.ErrUnknownSortKey),
		errors.Is(err, selection.ErrUnknownSurface):
		return http.StatusBadRequest, tr.InvalidRequest
	case errors.Is(err, mapview.ErrMissingAPIKey),
		errors.Is(err, mapview.ErrUnknownBackend):
		return http.StatusServiceUnavailable, tr.MapUnavailable
	case errors.Is(err, fueldb.ErrNoSnapshot):
		return http.StatusServiceUnavailable, tr.NoStations
	default:
		return http.StatusInternalServerError, tr.InternalError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := errorStatus(err, i18n.GetTranslations(requestLanguage(r)))
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	s.writeJSON(w, code, api.ErrorResponse{Message: msg, Code: code})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.log.Error("error encoding response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// decodeJSON reads a request body into v and validates it.
func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func validateRequest(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
