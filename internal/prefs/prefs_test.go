package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)

	stores := map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := s.Load(ctx, "a@salon.test")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.Save(ctx, "a@salon.test", []string{"T2", "", "T1", "T2"}))
			require.NoError(t, s.Save(ctx, "b@salon.test", []string{"T9"}))

			got, err = s.Load(ctx, "a@salon.test")
			require.NoError(t, err)
			assert.Equal(t, []string{"T2", "T1"}, got)

			require.NoError(t, s.Save(ctx, "a@salon.test", nil))
			got, err = s.Load(ctx, "a@salon.test")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestRedisStore_Key(t *testing.T) {
	s, mr := newRedisStore(t)

	require.NoError(t, s.Save(context.Background(), "a@salon.test", []string{"T1"}))

	val, err := mr.Get("prefs:a@salon.test:technicians")
	require.NoError(t, err)
	assert.JSONEq(t, `["T1"]`, val)
}

func TestRedisStore_Corrupt(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("prefs:a@salon.test:technicians", "not json"))

	_, err := s.Load(context.Background(), "a@salon.test")
	assert.Error(t, err)
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Load(context.Background(), "a@salon.test")
	assert.Error(t, err)
}
