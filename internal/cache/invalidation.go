package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// InvalidationChannel carries cache keys whose entries became stale. Every
// instance subscribes, so an admin write on one instance evicts everywhere.
const InvalidationChannel = "atelier.invalidate"

// Invalidator evicts locally and, when backed by redis, broadcasts the key so
// other instances evict too. For memory-only deployments it degrades to a
// plain local delete.
type Invalidator struct {
	provider Provider
	client   *redis.Client
	logger   *slog.Logger
}

func NewInvalidator(provider Provider, client *redis.Client, logger *slog.Logger) *Invalidator {
	return &Invalidator{provider: provider, client: client, logger: logger}
}

func (i *Invalidator) Invalidate(ctx context.Context, key string) {
	if err := i.provider.Delete(ctx, key); err != nil {
		i.logger.Warn("cache delete failed", slog.String("key", key), slog.Any("error", err))
	}

	if i.client == nil {
		return
	}
	if err := i.client.Publish(ctx, InvalidationChannel, key).Err(); err != nil {
		i.logger.Warn("cache invalidation publish failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Listen consumes the invalidation channel until ctx is cancelled. Run it in
// its own goroutine; it returns immediately when no redis client is wired.
func (i *Invalidator) Listen(ctx context.Context) {
	if i.client == nil {
		return
	}

	pubsub := i.client.Subscribe(ctx, InvalidationChannel)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := i.provider.Delete(ctx, msg.Payload); err != nil {
				i.logger.Warn("cache delete failed",
					slog.String("key", msg.Payload), slog.Any("error", err))
			}
		}
	}
}
