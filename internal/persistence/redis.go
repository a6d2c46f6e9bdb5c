package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/festivaz/web-gateway/internal/config"
	"github.com/festivaz/web-gateway/internal/session"
)

// Redis holds the client backing the redis session store.
type Redis struct {
	client *redis.Client
	prefix string
}

// ConnectRedis builds the client. An unreachable server is only logged; the
// readiness probe keeps reporting it until it comes up.
func ConnectRedis(cfg config.RedisConfig, appName string, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   appName,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis session store unreachable", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("redis session store ready", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &Redis{client: client, prefix: cfg.KeyPrefix}
}

// SessionStore returns a session store on this client.
func (r *Redis) SessionStore(ttl time.Duration) *session.RedisStore {
	return session.NewRedisStore(r.client, r.prefix, ttl)
}

// Ping reports whether the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis not connected")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}
