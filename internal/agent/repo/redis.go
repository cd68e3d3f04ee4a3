package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

type RedisStateRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateRepository(rdb redis.Cmdable, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisStateRepository) stateKey(senderID string) string {
	return fmt.Sprintf("conversation:%s:state", senderID)
}

func (r *RedisStateRepository) Get(ctx context.Context, senderID string) (model.ConversationState, bool, error) {
	key := r.stateKey(senderID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ConversationState{}, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation state from redis")
		return model.ConversationState{}, false, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal conversation state")
		return model.ConversationState{}, false, fmt.Errorf("unmarshal state: %w", err)
	}
	return state, true, nil
}

// Put overwrites the state and refreshes its TTL; a zero TTL keeps it forever.
func (r *RedisStateRepository) Put(ctx context.Context, senderID string, state model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		logx.Error().Err(err).Str("sender_id", senderID).Msg("failed to marshal conversation state")
		return fmt.Errorf("marshal state: %w", err)
	}

	key := r.stateKey(senderID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store conversation state in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Touch extends the state's TTL, like Put does on write.
func (r *RedisStateRepository) Touch(ctx context.Context, senderID string) error {
	if r.ttl <= 0 {
		return nil
	}
	key := r.stateKey(senderID)
	if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to extend conversation state ttl")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StateRepository = (*RedisStateRepository)(nil)
