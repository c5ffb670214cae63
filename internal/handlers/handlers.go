package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/LLAppelOffre/llao-application/internal/auth"
	"github.com/LLAppelOffre/llao-application/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	serviceName  = "llao-api"
	maxBodyBytes = 1 << 20
)

// Handler оборачивает Storage и сервисы авторизации
type Handler struct {
	Store    StorageInterface
	Tokens   *auth.TokenManager
	Limiter  *ratelimit.LoginLimiter
	Logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler создает новый Handler. limiter может быть nil.
func NewHandler(store StorageInterface, tokens *auth.TokenManager, limiter *ratelimit.LoginLimiter, logger *slog.Logger) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		Store:    store,
		Tokens:   tokens,
		Limiter:  limiter,
		Logger:   logger,
		validate: v,
	}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HealthHandler проверяет доступность базы
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.ErrorContext(r.Context(), "health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "service": serviceName})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": serviceName})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// serverError пишет ошибку в лог и отдает клиенту общий ответ
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Logger.ErrorContext(r.Context(), msg, slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "Erreur interne du serveur")
}

// decodeJSON читает тело с ограничением размера
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// decodeValid читает тело и проверяет теги validate
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "Corps de requête invalide")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Champ invalide: " + verrs[0].Field()
	}
	return "Corps de requête invalide"
}

// pathID разбирает числовой параметр пути, при ошибке отвечает 400
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Identifiant invalide")
		return 0, false
	}
	return id, true
}
