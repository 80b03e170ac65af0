package minio

import (
	"Motorway/internal/api/config"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage 头像与车辆封面所在的对象存储
type Storage struct {
	client *minio.Client
	bucket string
	expire time.Duration
}

// NewStorage 初始化 MinIO 客户端并确认主存储桶存在
func NewStorage(ctx context.Context, cfg config.MinIOConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MainBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("minio bucket %q does not exist", cfg.MainBucket)
	}

	expire := time.Duration(cfg.PresignExpire) * time.Minute
	if expire <= 0 {
		expire = time.Hour
	}
	return &Storage{client: client, bucket: cfg.MainBucket, expire: expire}, nil
}
