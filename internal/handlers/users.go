package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/internal/auth"
	"github.com/LLAppelOffre/llao-application/models"
	"github.com/go-chi/chi/v5"
)

const passwordTooLong = "Mot de passe trop long (72 octets maximum)"

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,max=72"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

type disableRequest struct {
	Disabled *bool `json:"disabled" validate:"required"`
}

// MeHandler обрабатывает GET /api/users/me
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
		"disabled":  user.Disabled,
	})
}

// ChangePasswordHandler обрабатывает PATCH /api/users/me/password
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user := currentUser(r)
	if !auth.CheckPassword(user.HashedPassword, req.OldPassword) {
		writeError(w, http.StatusBadRequest, "Ancien mot de passe incorrect")
		return
	}
	if !h.setPassword(w, r, user.Username, req.NewPassword) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mot de passe modifié avec succès"})
}

func (h *Handler) setPassword(w http.ResponseWriter, r *http.Request, username, password string) bool {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		writeError(w, http.StatusBadRequest, passwordTooLong)
		return false
	}
	if err != nil {
		h.serverError(w, r, "failed to hash password", err)
		return false
	}
	if err := h.Store.UpdateUserPassword(r.Context(), username, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Utilisateur non trouvé")
			return false
		}
		h.serverError(w, r, "failed to update password", err)
		return false
	}
	return true
}

// adminTarget проверяет права администратора и возвращает имя цели.
// selfDetail отдается с 400, если администратор указывает сам себя.
func adminTarget(w http.ResponseWriter, r *http.Request, selfDetail string) (*models.User, string, bool) {
	admin := currentUser(r)
	if !admin.IsAdmin() {
		writeError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return nil, "", false
	}
	target := chi.URLParam(r, "username")
	if target == admin.Username {
		writeError(w, http.StatusBadRequest, selfDetail)
		return nil, "", false
	}
	return admin, target, true
}

// DisableUserHandler обрабатывает PATCH /api/users/{username}/disable
func (h *Handler) DisableUserHandler(w http.ResponseWriter, r *http.Request) {
	admin, target, ok := adminTarget(w, r, "Impossible de se désactiver soi-même")
	if !ok {
		return
	}
	var req disableRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.Store.SetUserDisabled(r.Context(), target, *req.Disabled); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Utilisateur non trouvé")
			return
		}
		h.serverError(w, r, "failed to disable user", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "user disabled flag changed",
		slog.String("admin", admin.Username),
		slog.String("username", target),
		slog.Bool("disabled", *req.Disabled))

	msg := "Utilisateur réactivé"
	if *req.Disabled {
		msg = "Utilisateur désactivé"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// DeleteUserHandler обрабатывает DELETE /api/users/{username}
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	admin, target, ok := adminTarget(w, r, "Impossible de se supprimer soi-même")
	if !ok {
		return
	}
	if err := h.Store.DeleteUser(r.Context(), target); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Utilisateur non trouvé")
			return
		}
		h.serverError(w, r, "failed to delete user", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "user deleted",
		slog.String("admin", admin.Username),
		slog.String("username", target))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Utilisateur supprimé"})
}

// ResetPasswordHandler обрабатывает PATCH /api/users/{username}/password
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	_, target, ok := adminTarget(w, r, "Impossible de changer son propre mot de passe ici")
	if !ok {
		return
	}
	var req resetPasswordRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, err := h.Store.GetUserByUsername(r.Context(), target)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Utilisateur non trouvé")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load user", err)
		return
	}
	if user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Impossible de changer le mot de passe d'un autre admin")
		return
	}
	if !h.setPassword(w, r, target, req.NewPassword) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mot de passe modifié pour l'utilisateur"})
}
