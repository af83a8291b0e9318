package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a crashed holder can block a key.
const DefaultTTL = 2 * time.Minute

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard shared by every process talking to the same Redis server.
// Keys expire after the configured TTL so an abandoned lock heals itself.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// RedisOption configures a Redis guard.
type RedisOption func(*Redis)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis creates a guard on top of client.
func NewRedis(client redis.Cmdable, opts ...RedisOption) *Redis {
	if client == nil {
		panic("guard: redis client is required")
	}
	r := &Redis{
		client: client,
		prefix: "checkout:guard:",
		ttl:    DefaultTTL,
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) TryAcquire(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.prefix+key, token, r.ttl).Result()
	if err != nil {
		return false, errors.Join(ErrAcquireFailed, err)
	}
	if !ok {
		return false, nil
	}
	r.mu.Lock()
	r.tokens[key] = token
	r.mu.Unlock()
	return true, nil
}

// Release drops key if this guard instance holds it. A key acquired by
// another process, or already expired, is left alone.
func (r *Redis) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	token, ok := r.tokens[key]
	delete(r.tokens, key)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Join(ErrReleaseFailed, err)
	}
	return nil
}
