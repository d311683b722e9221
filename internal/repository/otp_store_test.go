package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRedisStore(t *testing.T) (*RedisOTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisOTPStore(client, 5*time.Minute, testLogger()), mr
}

// Every backend has to pass the same behavioural checks.
func TestOTPStores(t *testing.T) {
	stores := map[string]func(t *testing.T) OTPStore{
		"memory": func(t *testing.T) OTPStore { return NewMemoryOTPStore() },
		"redis": func(t *testing.T) OTPStore {
			s, _ := newRedisStore(t)
			return s
		},
		"dynamodb": func(t *testing.T) OTPStore {
			return NewDynamoOTPStore(newFakeDynamo(), "leads", 5*time.Minute, testLogger())
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)
			now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			_, err := store.Get(ctx, "+911234567890")
			assert.ErrorIs(t, err, ErrNotFound)

			first := models.OTPData{OTPHash: "hash-1", Phone: "+911234567890", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
			require.NoError(t, store.Save(ctx, "+911234567890", first))

			got, err := store.Get(ctx, "+911234567890")
			require.NoError(t, err)
			assert.Equal(t, "hash-1", got.OTPHash)
			assert.True(t, got.ExpiresAt.Equal(first.ExpiresAt))

			second := first
			second.OTPHash = "hash-2"
			require.NoError(t, store.Save(ctx, "+911234567890", second))
			require.NoError(t, store.Save(ctx, "+15551234567", first))

			got, err = store.Get(ctx, "+911234567890")
			require.NoError(t, err)
			assert.Equal(t, "hash-2", got.OTPHash)

			size, err := store.Size(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, size)

			require.NoError(t, store.Delete(ctx, "+911234567890"))
			_, err = store.Get(ctx, "+911234567890")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Delete(ctx, "+911234567890"), "deleting a missing key is not an error")
		})
	}
}

func TestRedisOTPStore_TTLIncludesRetention(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Save(ctx, "+911234567890", models.OTPData{
		OTPHash:   "hash",
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}))

	ttl := mr.TTL("otp:+911234567890")
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)

	mr.FastForward(11 * time.Minute)
	_, err := store.Get(ctx, "+911234567890")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoOTPStore_ItemLayout(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoOTPStore(fake, "leads", time.Minute, testLogger())

	expires := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(), "+911234567890", models.OTPData{
		OTPHash:   "hash",
		Phone:     "+911234567890",
		CreatedAt: expires.Add(-5 * time.Minute),
		ExpiresAt: expires,
	}))

	item, ok := fake.items["OTP#+911234567890|METADATA"]
	require.True(t, ok)
	assert.Equal(t, "hash", strAttr(item, "OTPHash"))
	ttl := item["TTL"]
	require.NotNil(t, ttl)
}
