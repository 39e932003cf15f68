package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
)

// Client Redis 客户端封装
// 当前用于绩效汇总查询缓存与限流计数；后续可扩展分布式锁等场景
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

// ── 绩效汇总缓存 ──

const perfCachePrefix = "perf:summary:"

// GetPerfSummary 读取绩效汇总缓存，未命中返回 ("", false, nil)
func (c *Client) GetPerfSummary(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, perfCachePrefix+key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetPerfSummary 写入绩效汇总缓存
func (c *Client) SetPerfSummary(ctx context.Context, key, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, perfCachePrefix+key, payload, ttl).Err()
}

// InvalidatePerfSummary 按员工删除绩效缓存（如提交新完工记录后）
func (c *Client) InvalidatePerfSummary(ctx context.Context, employeeID string) error {
	iter := c.rdb.Scan(ctx, 0, perfCachePrefix+employeeID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// ── 滑动窗口限流 ──

// CheckRateLimit 固定窗口计数限流：窗口内第 limit+1 次请求返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
