package redisstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisKVStore 是 KVStore 接口的 Redis 实现
type RedisKVStore struct {
	client    *redis.Client // 依赖 Redis 客户端
	keyPrefix string        // 所有 key 的统一前缀，方便管理
}

// NewRedisKVStore 创建 RedisKVStore 实例
func NewRedisKVStore(client *redis.Client, keyPrefix string) *RedisKVStore {
	if client == nil {
		panic("redis client cannot be nil for RedisKVStore")
	}
	if keyPrefix == "" {
		keyPrefix = "db:" // 默认前缀 "db:" (drawbit)
	}
	return &RedisKVStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisKVStore) fullKey(key string) string {
	return s.keyPrefix + key
}

// Get 读取 key，redis.Nil 视为不存在
func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	fullKey := s.fullKey(key)
	value, err := s.client.Get(ctx, fullKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis: failed to get %s: %w", fullKey, err)
	}
	return value, true, nil
}

// Set 覆盖写入，不设置过期时间
func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	fullKey := s.fullKey(key)
	if err := s.client.Set(ctx, fullKey, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %s: %w", fullKey, err)
	}
	return nil
}

// Delete 删除 key
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	fullKey := s.fullKey(key)
	if err := s.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete %s: %w", fullKey, err)
	}
	return nil
}
