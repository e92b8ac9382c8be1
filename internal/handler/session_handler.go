package handler

import (
	"net/http"

	"github.com/boddenberg/pizzaria-client-go/internal/app"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Navigation & session
// ============================================================

type navigateRequest struct {
	Path string `json:"path"`
}

type sessionResponse struct {
	Active bool                `json:"active"`
	User   *domain.UserProfile `json:"user,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest accepts the confirmation field that the domain form keeps
// out of its JSON encoding.
type registerRequest struct {
	domain.RegisterRequest
	ConfirmPassword string `json:"confirmPassword"`
}

func navigateHandler(a *app.App, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/navigate")
		defer span.End()

		var req navigateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Path == "" {
			req.Path = "/"
		}
		span.SetAttributes(attribute.String("path", req.Path))

		writeJSON(w, http.StatusOK, a.Navigate(ctx, req.Path))
	}
}

func getSessionHandler(sess *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur := sess.Current()
		writeJSON(w, http.StatusOK, sessionResponse{Active: cur.Active(), User: cur.User})
	}
}

func loginHandler(a *app.App, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session/login")
		defer span.End()

		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := a.Login(ctx, req.Email, req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func registerHandler(a *app.App, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session/register")
		defer span.End()

		var body registerRequest
		if !decodeBody(w, r, &body) {
			return
		}
		req := body.RegisterRequest
		req.ConfirmPassword = body.ConfirmPassword

		res, err := a.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func logoutHandler(a *app.App, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session/logout")
		defer span.End()

		res, err := a.Logout(ctx)
		if err != nil {
			// Memory is already cleared; a storage failure does not keep
			// the user logged in.
			logger.Warn("logout: storage cleanup failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func updateProfileHandler(sess *session.Store, feed *notify.Feed, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/session/profile")
		defer span.End()

		var patch domain.ProfilePatch
		if !decodeBody(w, r, &patch) {
			return
		}

		user, err := sess.UpdateProfile(ctx, &patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Notify(ctx, notify.KindSuccess, "Perfil atualizado com sucesso")
		writeJSON(w, http.StatusOK, user)
	}
}
