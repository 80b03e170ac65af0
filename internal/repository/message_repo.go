package repository

import (
	"Motorway/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type MessageRepo interface {
	ListByConversation(ctx context.Context, convID uint64) ([]*model.Message, error)
	CreateMessage(ctx context.Context, msg *model.Message, event *model.NegotiationEvent) error
	MarkRead(ctx context.Context, convID, readerID uint64) (int64, error)
	CountUnread(ctx context.Context, convIDs []uint64, readerID uint64) (map[uint64]int64, error)
	LastMessages(ctx context.Context, convIDs []uint64) (map[uint64]*model.Message, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

// ListByConversation 会话内全部消息，按时间升序
func (s *messageRepoImpl) ListByConversation(ctx context.Context, convID uint64) ([]*model.Message, error) {
	var list []*model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

// CreateMessage 写入消息、刷新会话活跃时间并写事件
func (s *messageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message, event *model.NegotiationEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if err := touchConversation(tx, msg.ConversationID, msg.CreatedAt); err != nil {
			return err
		}
		if event != nil {
			return tx.Create(event).Error
		}
		return nil
	})
}

// MarkRead 将对方发来的未读消息置为已读
func (s *messageRepoImpl) MarkRead(ctx context.Context, convID, readerID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread 批量统计未读数
func (s *messageRepoImpl) CountUnread(ctx context.Context, convIDs []uint64, readerID uint64) (map[uint64]int64, error) {
	result := make(map[uint64]int64, len(convIDs))
	if len(convIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ConversationID uint64
		Cnt            int64
	}
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS cnt").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", convIDs, readerID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.ConversationID] = r.Cnt
	}
	return result, nil
}

// LastMessages 每个会话的最后一条消息
func (s *messageRepoImpl) LastMessages(ctx context.Context, convIDs []uint64) (map[uint64]*model.Message, error) {
	result := make(map[uint64]*model.Message, len(convIDs))
	if len(convIDs) == 0 {
		return result, nil
	}

	sub := s.db.Model(&model.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", convIDs).
		Group("conversation_id")

	var list []*model.Message
	if err := s.db.WithContext(ctx).Where("id IN (?)", sub).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, m := range list {
		result[m.ConversationID] = m
	}
	return result, nil
}
