package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/internal/auth"
	"github.com/LLAppelOffre/llao-application/internal/metrics"
	"github.com/LLAppelOffre/llao-application/models"
)

type registerRequest struct {
	Username string  `json:"username" validate:"required,max=50"`
	Password string  `json:"password" validate:"required,max=72"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role" validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler обрабатывает POST /api/register
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		writeError(w, http.StatusBadRequest, passwordTooLong)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to hash password", err)
		return
	}
	user := &models.User{
		Username:       req.Username,
		FullName:       req.FullName,
		Role:           req.Role,
		HashedPassword: hash,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Nom d'utilisateur déjà utilisé")
			return
		}
		h.serverError(w, r, "failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"message":  "Utilisateur créé avec succès",
	})
}

// readCredentials принимает форму OAuth2 password flow или JSON
func readCredentials(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		err := decodeJSON(w, r, &req)
		return req, err
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, nil
}

// TokenHandler обрабатывает POST /api/token
func (h *Handler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(w, r)
	if err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username et password requis")
		return
	}
	ctx := r.Context()

	allowed, err := h.Limiter.Allowed(ctx, req.Username)
	if err != nil {
		// без Redis вход не блокируем
		h.Logger.WarnContext(ctx, "login limiter unavailable", slog.String("error", err.Error()))
		allowed = true
	}
	if !allowed {
		metrics.ObserveLogin(metrics.LoginThrottled)
		writeError(w, http.StatusTooManyRequests, "Trop de tentatives de connexion, réessayez plus tard")
		return
	}

	user, err := h.Store.GetUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.serverError(w, r, "failed to load user", err)
		return
	}

	switch err := auth.Verify(user, req.Password); {
	case errors.Is(err, auth.ErrInvalidCredentials):
		if lerr := h.Limiter.RegisterFailure(ctx, req.Username); lerr != nil {
			h.Logger.WarnContext(ctx, "failed to record login failure", slog.String("error", lerr.Error()))
		}
		metrics.ObserveLogin(metrics.LoginFailure)
		unauthorized(w, "Nom d'utilisateur ou mot de passe incorrect")
		return
	case errors.Is(err, auth.ErrUserDisabled):
		metrics.ObserveLogin(metrics.LoginDisabled)
		writeError(w, http.StatusBadRequest, "Utilisateur désactivé")
		return
	}

	if err := h.Limiter.Reset(ctx, req.Username); err != nil {
		h.Logger.WarnContext(ctx, "failed to reset login failures", slog.String("error", err.Error()))
	}
	token, err := h.Tokens.Generate(user.Username)
	if err != nil {
		h.serverError(w, r, "failed to sign token", err)
		return
	}
	metrics.ObserveLogin(metrics.LoginSuccess)
	h.Logger.InfoContext(ctx, "user logged in", slog.String("username", user.Username))

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user": map[string]any{
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}
