package repository

import (
	"Motorway/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ConversationRepo interface {
	GetConversation(ctx context.Context, id uint64) (*model.Conversation, error)
	GetConversationByPublicID(ctx context.Context, publicID string) (*model.Conversation, error)
	GetByBuyerAndVehicle(ctx context.Context, buyerID, vehicleID uint64) (*model.Conversation, error)
	CreateConversation(ctx context.Context, conv *model.Conversation, first *model.Message, event *model.NegotiationEvent) error
	ListByUser(ctx context.Context, userID uint64) ([]*model.Conversation, error)
	ListByVehicle(ctx context.Context, vehicleID uint64) ([]*model.Conversation, error)
	MarkRemoved(ctx context.Context, convID, userID uint64) error
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

func (s *conversationRepoImpl) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Buyer").Preload("Seller").Preload("Vehicle")
}

// GetConversation 根据会话 ID 获取会话及双方、车辆信息
func (s *conversationRepoImpl) GetConversation(ctx context.Context, id uint64) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.preload(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *conversationRepoImpl) GetConversationByPublicID(ctx context.Context, publicID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.preload(ctx).Where("public_id = ?", publicID).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *conversationRepoImpl) GetByBuyerAndVehicle(ctx context.Context, buyerID, vehicleID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.preload(ctx).
		Where("buyer_id = ? AND vehicle_id = ?", buyerID, vehicleID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation 在一个事务内创建会话、首条消息与事件
func (s *conversationRepoImpl) CreateConversation(ctx context.Context, conv *model.Conversation, first *model.Message, event *model.NegotiationEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if conv.LastMessageAt.IsZero() {
			conv.LastMessageAt = time.Now()
		}
		if err := tx.Omit("Buyer", "Seller", "Vehicle").Create(conv).Error; err != nil {
			return err
		}
		if first != nil {
			first.ConversationID = conv.ID
			if err := tx.Create(first).Error; err != nil {
				return err
			}
		}
		if event != nil {
			event.ConversationID = conv.ID
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByVehicle 同一车辆下的全部会话，仅取缓存失效需要的字段
func (s *conversationRepoImpl) ListByVehicle(ctx context.Context, vehicleID uint64) ([]*model.Conversation, error) {
	var list []*model.Conversation
	err := s.db.WithContext(ctx).
		Select("id", "buyer_id", "seller_id", "vehicle_id").
		Where("vehicle_id = ?", vehicleID).
		Find(&list).Error
	return list, err
}

// ListByUser 当前用户未移除的会话，按最后活跃时间倒序
func (s *conversationRepoImpl) ListByUser(ctx context.Context, userID uint64) ([]*model.Conversation, error) {
	var list []*model.Conversation
	err := s.preload(ctx).
		Where("(buyer_id = ? AND buyer_removed = ?) OR (seller_id = ? AND seller_removed = ?)",
			userID, false, userID, false).
		Order("last_message_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

// MarkRemoved 仅对调用方一侧做软删除
func (s *conversationRepoImpl) MarkRemoved(ctx context.Context, convID, userID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		if err := tx.Select("id", "buyer_id", "seller_id").First(&conv, convID).Error; err != nil {
			return err
		}
		column := ""
		switch userID {
		case conv.BuyerID:
			column = "buyer_removed"
		case conv.SellerID:
			column = "seller_removed"
		default:
			return errors.New("user is not a participant")
		}
		return tx.Model(&model.Conversation{}).Where("id = ?", convID).Update(column, true).Error
	})
}

// touchConversation 新活动让会话重新出现在双方列表中
func touchConversation(tx *gorm.DB, convID uint64, at time.Time) error {
	return tx.Model(&model.Conversation{}).Where("id = ?", convID).
		Updates(map[string]interface{}{
			"last_message_at": at,
			"buyer_removed":   false,
			"seller_removed":  false,
		}).Error
}
