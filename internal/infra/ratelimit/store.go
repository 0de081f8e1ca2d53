package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	"pdf2image/internal/infra/logging"
)

// RedisConfig points the limiter store at a Redis instance. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr string
	DB   int
}

// NewStore returns the storage backing the rate limiters: Redis when
// configured and reachable, in-memory otherwise. The Redis driver panics on
// connection failure, so init is wrapped and falls back to memory.
func NewStore(cfg RedisConfig) fiber.Storage {
	store := fiber.Storage(memoryStorage.New())
	if cfg.Addr == "" {
		return store
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
			}
		}()
		store = redisStorage.New(redisStorage.Config{
			Addrs:    []string{cfg.Addr},
			Database: cfg.DB,
		})
		logging.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.DB)
	}()

	return store
}
