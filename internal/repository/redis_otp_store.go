package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisOTPPrefix = "otp:"

// RedisOTPStore keeps OTP entries as JSON strings. The Redis TTL outlives
// ExpiresAt by retention so that a late verification still sees the entry
// and reports it as expired rather than missing.
type RedisOTPStore struct {
	client    *redis.Client
	retention time.Duration
	logger    *logrus.Logger
}

func NewRedisOTPStore(client *redis.Client, retention time.Duration, logger *logrus.Logger) *RedisOTPStore {
	return &RedisOTPStore{
		client:    client,
		retention: retention,
		logger:    logger,
	}
}

func (s *RedisOTPStore) Save(ctx context.Context, phoneKey string, data models.OTPData) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP data: %w", err)
	}

	ttl := time.Until(data.ExpiresAt) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}

	if err := s.client.Set(ctx, redisOTPPrefix+phoneKey, dataJSON, ttl).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store OTP in Redis")
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, phoneKey string) (*models.OTPData, error) {
	dataJSON, err := s.client.Get(ctx, redisOTPPrefix+phoneKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get OTP from Redis")
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}

	var data models.OTPData
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP data: %w", err)
	}

	return &data, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, phoneKey string) error {
	if err := s.client.Del(ctx, redisOTPPrefix+phoneKey).Err(); err != nil {
		return fmt.Errorf("failed to delete OTP: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Size(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, redisOTPPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan OTP keys: %w", err)
	}
	return count, nil
}
