package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "menza:lease:"

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisManager is a Manager shared by every process talking to the same Redis
type RedisManager struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisManager connects to Redis and verifies the connection
func NewRedisManager(cfg RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client, ""), nil
}

// NewRedisManagerWithClient creates a manager with an existing Redis client
func NewRedisManagerWithClient(client *redis.Client, keyPrefix string) *RedisManager {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisManager{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryAcquire implements Manager using SET NX with an expiry
func (m *RedisManager) TryAcquire(ctx context.Context, name string, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	key := m.keyPrefix + name

	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lease %s: %w", name, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return &redisLease{client: m.client, key: key, name: name, token: token}, nil
}

// Close closes the Redis client
func (m *RedisManager) Close() error {
	return m.client.Close()
}

type redisLease struct {
	client *redis.Client
	key    string
	name   string
	token  string
}

func (l *redisLease) Name() string {
	return l.name
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", l.name, err)
	}
	return nil
}
