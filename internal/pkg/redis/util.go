package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const unlockScript = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"

// 版本键未变时才写入；版本键不存在视为空串
const setIfVersionScript = `
local v = redis.call('get', KEYS[2])
if not v then v = '' end
if v ~= ARGV[2] then return 0 end
if tonumber(ARGV[3]) > 0 then
	redis.call('set', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('set', KEYS[1], ARGV[1])
end
return 1`

// SetWithExpiration 设置键值对并设置过期时间
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，键不存在时返回空串
func (c *Client) GetValue(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// DeleteKey 删除一个或多个键
func (c *Client) DeleteKey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Incr 自增计数并刷新过期时间
func (c *Client) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if expiration > 0 {
			pipe.Expire(ctx, key, expiration)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// SetIfVersion versionKey 的值仍为 version 时写入 key，返回是否写入
func (c *Client) SetIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey, version string) (bool, error) {
	n, err := c.rdb.Eval(ctx, setIfVersionScript, []string{key, versionKey}, value, version, expiration.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// TryLock 尝试加锁，retryTimes 为 0 时只尝试一次
func (c *Client) TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i <= retryTimes || retryTimes == -1; i++ {
		success, err := c.rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		if i == retryTimes {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return false, nil
}

// UnLock 仅当锁仍属于自己时释放
func (c *Client) UnLock(ctx context.Context, key string, value interface{}) error {
	return c.rdb.Eval(ctx, unlockScript, []string{key}, value).Err()
}

// Publish 向频道发布消息
func (c *Client) Publish(ctx context.Context, channel string, payload interface{}) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe 订阅频道，调用方负责 Close
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}
