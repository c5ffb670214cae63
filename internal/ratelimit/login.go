package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "llao:login:failures:"

// NewRedisClient разбирает REDIS_URL и проверяет соединение
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// LoginLimiter считает неудачные входы по имени пользователя в окне window.
// Нулевой *LoginLimiter ничего не ограничивает.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func key(username string) string {
	return keyPrefix + strings.ToLower(username)
}

// Allowed false, если лимит неудачных попыток исчерпан
func (l *LoginLimiter) Allowed(ctx context.Context, username string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	n, err := l.rdb.Get(ctx, key(username)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login attempts: %w", err)
	}
	return n < l.maxAttempts, nil
}

// RegisterFailure увеличивает счетчик; окно отсчитывается от первой неудачи
func (l *LoginLimiter) RegisterFailure(ctx context.Context, username string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	k := key(username)
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("count login failure: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("expire login failures: %w", err)
		}
	}
	return nil
}

// Reset сбрасывает счетчик после успешного входа
func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	if err := l.rdb.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
