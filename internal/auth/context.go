package auth

import (
	"context"

	"github.com/LLAppelOffre/llao-application/models"
)

type ctxKey struct{}

// WithUser кладет аутентифицированного пользователя в контекст запроса
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*models.User)
	return user, ok && user != nil
}
