package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/internal/auth"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticate проверяет bearer токен и кладет пользователя в контекст.
// Пользователь перечитывается из базы на каждый запрос.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractToken(r.Header.Get("Authorization"))
		if err != nil {
			unauthorized(w, "Non authentifié")
			return
		}
		username, err := h.Tokens.Validate(token)
		if err != nil {
			unauthorized(w, "Impossible de valider les identifiants")
			return
		}
		user, err := h.Store.GetUserByUsername(r.Context(), username)
		if errors.Is(err, db.ErrNotFound) {
			unauthorized(w, "Impossible de valider les identifiants")
			return
		}
		if err != nil {
			h.serverError(w, r, "failed to load user", err)
			return
		}
		if user.Disabled {
			writeError(w, http.StatusBadRequest, "Utilisateur désactivé")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, detail)
}

// currentUser пользователь, положенный Authenticate
func currentUser(r *http.Request) *models.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

// RequestLogger пишет одну строку на запрос после ответа
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(r.Context(), "request completed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
