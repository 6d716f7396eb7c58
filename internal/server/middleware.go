package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// requireSession resolves the bearer token, or the token query parameter
// used by websocket clients, to a live session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, r, errUnauthorized)
			return
		}

		sess, err := s.Auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// requestLanguage picks the lang query parameter, then the session
// language, then Accept-Language.
func requestLanguage(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return i18n.Normalize(lang)
	}
	if sess := sessionFromContext(r.Context()); sess != nil {
		return sess.Language
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		first, _, _ := strings.Cut(accept, ",")
		first, _, _ = strings.Cut(first, ";")
		return i18n.Normalize(strings.TrimSpace(first))
	}
	return i18n.DefaultLanguage
}
