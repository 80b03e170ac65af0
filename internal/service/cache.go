package service

import (
	"context"
	"time"
)

// Cache 会话快照与会话列表缓存
type Cache interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteKey(ctx context.Context, keys ...string) error
	// Incr 与 SetIfVersion 配合：失效时递增版本，回填时版本不变才写入
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)
	SetIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey, version string) (bool, error)
}

// Locker 会话级互斥，同一会话同时只允许一个议价操作
type Locker interface {
	TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error)
	UnLock(ctx context.Context, key string, value interface{}) error
}

// MediaSigner 为对象存储中的头像、封面生成临时地址
type MediaSigner interface {
	SignURL(ctx context.Context, objectKey string) string
}
