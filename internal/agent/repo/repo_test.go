package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
)

func stores(t *testing.T) map[string]model.StateRepository {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]model.StateRepository{
		"memory": NewMemoryStateRepository(0),
		"redis":  NewRedisStateRepository(client, 0),
	}
}

func TestStateRoundTrip(t *testing.T) {
	states := []model.ConversationState{
		model.NewConversationState(),
		{Stage: model.Menu{}, LastTopic: model.TopicServices},
		{Stage: model.CollectingName{}, LastTopic: model.TopicServices},
		{Stage: model.CollectingEmail{Name: "Jane"}},
		{Stage: model.CollectingProject{Name: "Jane", Email: "j@x.io"}},
		{Stage: model.OfferingCall{Lead: model.Lead{Name: "Jane", Email: "j@x.io", ProjectDetails: "an app"}}},
	}

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "whatsapp:+100")
			require.NoError(t, err)
			assert.False(t, ok)

			for _, want := range states {
				require.NoError(t, store.Put(ctx, "whatsapp:+100", want))
				got, ok, err := store.Get(ctx, "whatsapp:+100")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, want, got)
			}

			_, ok, err = store.Get(ctx, "whatsapp:+200")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRedisStateKeyAndTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStateRepository(client, time.Hour)
	require.NoError(t, store.Put(context.Background(), "abc", model.NewConversationState()))

	assert.True(t, srv.Exists("conversation:abc:state"))
	assert.Equal(t, time.Hour, srv.TTL("conversation:abc:state"))

	srv.FastForward(2 * time.Hour)
	_, ok, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStateErrors(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStateRepository(client, 0)

	require.NoError(t, srv.Set("conversation:bad:state", "{not json"))
	_, _, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)

	srv.Close()
	_, _, err = store.Get(context.Background(), "abc")
	assert.Error(t, err)
	assert.Error(t, store.Put(context.Background(), "abc", model.NewConversationState()))
}

func TestMemoryStateExpires(t *testing.T) {
	store := NewMemoryStateRepository(20 * time.Millisecond)
	require.NoError(t, store.Put(context.Background(), "abc", model.NewConversationState()))
	assert.Equal(t, 1, store.Len())

	require.Eventually(t, func() bool {
		_, ok, _ := store.Get(context.Background(), "abc")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestRedisTouchRestartsTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStateRepository(client, time.Hour)
	require.NoError(t, store.Put(ctx, "abc", model.NewConversationState()))

	srv.FastForward(40 * time.Minute)
	assert.Equal(t, 20*time.Minute, srv.TTL("conversation:abc:state"))

	require.NoError(t, store.Touch(ctx, "abc"))
	assert.Equal(t, time.Hour, srv.TTL("conversation:abc:state"))

	srv.FastForward(40 * time.Minute)
	_, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Touch(ctx, "unknown"))
	assert.False(t, srv.Exists("conversation:unknown:state"))
}

func TestMemoryTouchRestartsTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateRepository(100 * time.Millisecond)
	require.NoError(t, store.Put(ctx, "abc", model.NewConversationState()))

	for range 4 {
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, store.Touch(ctx, "abc"))
	}
	_, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Touch(ctx, "unknown"))
	assert.Equal(t, 1, store.Len())
}

func TestTouchKeepsState(t *testing.T) {
	want := model.ConversationState{Stage: model.CollectingEmail{Name: "Jane"}, LastTopic: model.TopicServices}

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "abc", want))
			require.NoError(t, store.Touch(ctx, "abc"))

			got, ok, err := store.Get(ctx, "abc")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}
