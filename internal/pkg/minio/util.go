package minio

import (
	"context"
	log "log/slog"
	"net/url"
)

// SignURL 生成对象的临时访问地址，失败时返回空串由前端展示占位图
func (s *Storage) SignURL(ctx context.Context, objectKey string) string {
	if s == nil || objectKey == "" {
		return ""
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, s.expire, url.Values{})
	if err != nil {
		log.WarnContext(ctx, "presign object failed", "key", objectKey, "err", err)
		return ""
	}
	return u.String()
}
