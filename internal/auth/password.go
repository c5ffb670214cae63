package auth

import (
	"errors"
	"fmt"

	"github.com/LLAppelOffre/llao-application/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user disabled")
	ErrPasswordTooLong    = errors.New("password longer than 72 bytes")
)

// MaxPasswordBytes предел bcrypt
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Verify проверяет вход пользователя: сначала пароль, потом флаг disabled.
// user == nil значит пользователь не найден.
func Verify(user *models.User, password string) error {
	if user == nil || !CheckPassword(user.HashedPassword, password) {
		return ErrInvalidCredentials
	}
	if user.Disabled {
		return ErrUserDisabled
	}
	return nil
}
