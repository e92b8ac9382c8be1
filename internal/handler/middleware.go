package handler

import (
	"net/http"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"go.uber.org/zap"
)

// SessionReader exposes the current session to the middleware.
type SessionReader interface {
	Current() domain.Session
}

// RequireSession rejects requests made while no user is logged in.
func RequireSession(sess SessionReader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sess.Current().Active() {
				logger.Debug("session required",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusUnauthorized, "Faça login para continuar")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
