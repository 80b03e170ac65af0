package repository

import (
	"Motorway/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// EventRepo 议价事件发件箱
type EventRepo interface {
	ListUnpublished(ctx context.Context, limit, maxAttempts int) ([]*model.NegotiationEvent, error)
	MarkPublished(ctx context.Context, ids []uint64, at time.Time) error
	IncrAttempts(ctx context.Context, ids []uint64) error
}

type eventRepoImpl struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepoImpl{db: db}
}

// ListUnpublished 按写入顺序取出未投递的事件；
// maxAttempts > 0 时跳过失败次数已达上限的事件，这些事件留在表中等待人工处理
func (s *eventRepoImpl) ListUnpublished(ctx context.Context, limit, maxAttempts int) ([]*model.NegotiationEvent, error) {
	var list []*model.NegotiationEvent
	q := s.db.WithContext(ctx).Where("published_at IS NULL")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	err := q.Order("id ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (s *eventRepoImpl) MarkPublished(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.NegotiationEvent{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}

// IncrAttempts 记录单个事件的投递失败次数
func (s *eventRepoImpl) IncrAttempts(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.NegotiationEvent{}).
		Where("id IN ?", ids).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
