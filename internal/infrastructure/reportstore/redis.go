package reportstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

const redisKeyPrefix = "loan-report:"

// RedisStore keeps each report under loan-report:<year>-<MM>. A zero TTL
// keeps reports forever.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(year int, month time.Month) string {
	return redisKeyPrefix + model.PeriodKey(year, month)
}

func (s *RedisStore) Save(ctx context.Context, report model.MonthlyReport) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	key := redisKey(report.Period.Year, time.Month(report.Period.Month))
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, year int, month time.Month) (model.MonthlyReport, error) {
	key := redisKey(year, month)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.MonthlyReport{}, reportNotFound(year, month)
		}
		return model.MonthlyReport{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(data, year, month)
}
