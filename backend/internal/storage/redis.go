package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient обертка над redis.Client
type RedisClient struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient создает нового Redis клиента
func NewRedisClient(addr, password string, db int, logger *zap.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Настройки пула
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
		IdleTimeout:  5 * time.Minute,

		// Таймауты
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Проверка соединения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established",
		zap.String("addr", addr),
		zap.Int("db", db))

	return &RedisClient{
		client: client,
		logger: logger,
	}, nil
}

// Close закрывает соединение с Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// SetWithExpiry сохраняет значение с TTL
func (r *RedisClient) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// GetInt получает значение как int, отсутствующий ключ дает 0
func (r *RedisClient) GetInt(ctx context.Context, key string) (int, error) {
	val, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// Increment увеличивает значение на 1
func (r *RedisClient) Increment(ctx context.Context, key string) error {
	return r.client.Incr(ctx, key).Err()
}

// TTL получает оставшееся время жизни ключа
func (r *RedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.client.TTL(ctx, key).Result()
}

// Keys возвращает ключи по шаблону
func (r *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

// HealthCheck проверка здоровья Redis
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// RateLimit проверка rate limit: не больше limit вызовов за window.
// Возвращает false и время до сброса, если лимит исчерпан.
func (r *RedisClient) RateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	current, err := r.GetInt(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if current >= limit {
		ttl, err := r.TTL(ctx, key)
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}

	// Первый запрос в окне задает TTL
	if current == 0 {
		if err := r.SetWithExpiry(ctx, key, "1", window); err != nil {
			return false, 0, err
		}
	} else {
		if err := r.Increment(ctx, key); err != nil {
			return false, 0, err
		}
	}

	return true, 0, nil
}
