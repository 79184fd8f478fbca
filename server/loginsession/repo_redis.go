package loginsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "varix:session:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisRepo shares sessions between server instances. Values are JSON with
// a sliding TTL.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepo connects and pings the server.
func NewRedisRepo(ctx context.Context, opts RedisOptions) (*RedisRepo, error) {
	const op = "loginsession/NewRedisRepo"

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to connect to Redis: %w", op, err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRepo{client: client, ttl: ttl}, nil
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}

func (r *RedisRepo) Upsert(ctx context.Context, key string, session *sessions.Session) error {
	const op = "loginsession/RedisRepo.Upsert"

	if key == "" || session == nil {
		return fmt.Errorf("%s: %w", op, apperrors.ErrInvalidInput)
	}
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.client.Set(ctx, redisPrefix+hashKey(key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, key string) (*sessions.Session, error) {
	const op = "loginsession/RedisRepo.Get"

	if key == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	k := redisPrefix + hashKey(key)
	b, err := r.client.GetEx(ctx, k, r.ttl).Bytes()
	if err == redis.Nil {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var s sessions.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

func (r *RedisRepo) Delete(ctx context.Context, key string) error {
	const op = "loginsession/RedisRepo.Delete"

	if err := r.client.Del(ctx, redisPrefix+hashKey(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
