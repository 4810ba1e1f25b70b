package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// MaxAttempts is the number of wrong codes tolerated before a challenge is locked.
const MaxAttempts = 5

const (
	PurposeRegistration  = "registration"
	PurposePasswordReset = "password_reset"
)

var (
	ErrCodeExpired     = errors.New("code has expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrCodeMismatch    = errors.New("code is incorrect")
	ErrInvalidFormat   = errors.New("code must be 6 digits")
)

// NewChallenge generates a fresh six digit code and the challenge that stores its hash.
func NewChallenge(now time.Time, ttl time.Duration) (code string, challenge db.CodeChallenge, err error) {
	code, err = util.GenerateSixDigitCode()
	if err != nil {
		return "", db.CodeChallenge{}, fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", db.CodeChallenge{}, fmt.Errorf("failed to hash code: %w", err)
	}

	challenge = db.CodeChallenge{
		CodeHash:  string(hash),
		Attempts:  0,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	return code, challenge, nil
}

// Check validates code against challenge. Expiry and the attempt limit are checked before the hash.
func Check(challenge db.CodeChallenge, code string, now time.Time) error {
	if !now.Before(challenge.ExpiresAt) {
		return ErrCodeExpired
	}
	if challenge.Attempts >= MaxAttempts {
		return ErrTooManyAttempts
	}
	if len(code) != 6 {
		return ErrInvalidFormat
	}

	if err := bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)); err != nil {
		return ErrCodeMismatch
	}

	return nil
}

// Limiter throttles how often a code can be sent to the same address.
type Limiter interface {
	// Allow reserves the send slot for key. When the slot is taken it returns false and the remaining wait.
	Allow(ctx context.Context, purpose, key string) (bool, time.Duration, error)
}

// RedisLimiter keeps one expiring key per address in Redis.
type RedisLimiter struct {
	redis    *redis.Client
	prefix   string
	interval time.Duration
}

type LimiterOption func(*RedisLimiter)

// WithPrefix sets the namespace of the Redis keys.
func WithPrefix(prefix string) LimiterOption {
	return func(l *RedisLimiter) {
		l.prefix = prefix
	}
}

func NewRedisLimiter(redisClient *redis.Client, interval time.Duration, opts ...LimiterOption) *RedisLimiter {
	l := &RedisLimiter{
		redis:    redisClient,
		prefix:   "code_sent",
		interval: interval,
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLimiter) Allow(ctx context.Context, purpose, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s:%s", l.prefix, purpose, db.NormalizeEmail(key))

	ok, err := l.redis.SetNX(ctx, redisKey, time.Now().Unix(), l.interval).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve send slot: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := l.redis.TTL(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read send slot ttl: %w", err)
	}
	if ttl < 0 {
		ttl = l.interval
	}

	return false, ttl, nil
}
