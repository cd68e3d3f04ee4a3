// Package repo holds the conversation state stores.
package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
)

// MemoryStateRepository keeps state in process memory. States expire after
// ttl of inactivity; a ttl <= 0 keeps them for the life of the process.
type MemoryStateRepository struct {
	cache *cache.Cache
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl
	if ttl == cache.NoExpiration {
		cleanup = 0
	}
	return &MemoryStateRepository{cache: cache.New(ttl, cleanup)}
}

func (r *MemoryStateRepository) Get(_ context.Context, senderID string) (model.ConversationState, bool, error) {
	v, ok := r.cache.Get(senderID)
	if !ok {
		return model.ConversationState{}, false, nil
	}
	return v.(model.ConversationState), true, nil
}

func (r *MemoryStateRepository) Put(_ context.Context, senderID string, state model.ConversationState) error {
	r.cache.Set(senderID, state, cache.DefaultExpiration)
	return nil
}

func (r *MemoryStateRepository) Touch(_ context.Context, senderID string) error {
	if v, ok := r.cache.Get(senderID); ok {
		r.cache.Set(senderID, v, cache.DefaultExpiration)
	}
	return nil
}

// Len reports how many conversations are held.
func (r *MemoryStateRepository) Len() int {
	return r.cache.ItemCount()
}

var _ model.StateRepository = (*MemoryStateRepository)(nil)
