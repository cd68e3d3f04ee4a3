package sink

import (
	"context"

	"github.com/redis/go-redis/v9"

	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
)

// RedisSink appends records to a Redis list. RPUSH is atomic, so concurrent
// writers never interleave.
type RedisSink struct {
	client *redis.Client
	key    string
}

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Append(ctx context.Context, line string) error {
	if err := s.client.RPush(ctx, s.key, FoldLine(line)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisSink) Close() error {
	return nil
}
