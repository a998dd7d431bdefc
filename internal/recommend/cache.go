package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores ranked results between requests.
type Cache interface {
	Get(ctx context.Context, studentID, courseID string) (*Result, bool, error)
	Set(ctx context.Context, res *Result) error
	// Invalidate drops every cached result for the student.
	Invalidate(ctx context.Context, studentID string) error
}

const keyPrefix = "studypath:rec:"

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at url (redis://...) and
// verifies the connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func cacheKey(studentID, courseID string) string {
	return keyPrefix + studentID + ":" + courseID
}

func (c *RedisCache) Get(ctx context.Context, studentID, courseID string) (*Result, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(studentID, courseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, true, nil
}

func (c *RedisCache) Set(ctx context.Context, res *Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(res.StudentID, res.CourseID), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, studentID string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+studentID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
