package repository

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/negotiation"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferRepo interface {
	GetOffer(ctx context.Context, id uint64) (*model.Offer, error)
	GetOfferByPublicID(ctx context.Context, publicID string) (*model.Offer, error)
	ListByConversation(ctx context.Context, convID uint64) ([]*model.Offer, error)
	CreateOffer(ctx context.Context, offer *model.Offer, event *model.NegotiationEvent) error
	CounterOffer(ctx context.Context, originalID uint64, counter *model.Offer, event *model.NegotiationEvent) error
	RespondToOffer(ctx context.Context, offer *model.Offer, status negotiation.Status, event *model.NegotiationEvent) error
}

type offerRepoImpl struct {
	db *gorm.DB
}

func NewOfferRepo(db *gorm.DB) OfferRepo {
	return &offerRepoImpl{db: db}
}

func (s *offerRepoImpl) GetOffer(ctx context.Context, id uint64) (*model.Offer, error) {
	var offer model.Offer
	if err := s.db.WithContext(ctx).First(&offer, id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (s *offerRepoImpl) GetOfferByPublicID(ctx context.Context, publicID string) (*model.Offer, error) {
	var offer model.Offer
	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByConversation 会话内全部报价，按时间升序
func (s *offerRepoImpl) ListByConversation(ctx context.Context, convID uint64) ([]*model.Offer, error) {
	var list []*model.Offer
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

// CreateOffer 会话内没有待处理报价且议价未结束时插入新报价
func (s *offerRepoImpl) CreateOffer(ctx context.Context, offer *model.Offer, event *model.NegotiationEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, offer.ConversationID); err != nil {
			return err
		}
		if err := ensureOpen(tx, offer.VehicleID); err != nil {
			return err
		}

		var pending int64
		err := tx.Model(&model.Offer{}).
			Where("conversation_id = ? AND status = ?", offer.ConversationID, negotiation.Pending.String()).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrPendingOfferExists
		}

		offer.Status = negotiation.Pending.String()
		if err = tx.Create(offer).Error; err != nil {
			return err
		}
		return afterOfferWrite(tx, offer, event)
	})
}

// CounterOffer 原报价 PENDING→COUNTERED 与新报价插入在同一事务内完成
func (s *offerRepoImpl) CounterOffer(ctx context.Context, originalID uint64, counter *model.Offer, event *model.NegotiationEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, counter.ConversationID); err != nil {
			return err
		}
		if err := ensureOpen(tx, counter.VehicleID); err != nil {
			return err
		}
		if err := compareAndSetStatus(tx, originalID, negotiation.Countered); err != nil {
			return err
		}

		counter.Status = negotiation.Pending.String()
		counter.ParentOfferID = &originalID
		if err := tx.Create(counter).Error; err != nil {
			return err
		}
		return afterOfferWrite(tx, counter, event)
	})
}

// RespondToOffer 接受或拒绝；接受时车辆进入 RESERVED
func (s *offerRepoImpl) RespondToOffer(ctx context.Context, offer *model.Offer, status negotiation.Status, event *model.NegotiationEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConversation(tx, offer.ConversationID); err != nil {
			return err
		}
		// 议价结束后剩余的待处理报价冻结，拒绝也不再允许
		if err := ensureOpen(tx, offer.VehicleID); err != nil {
			return err
		}
		if err := compareAndSetStatus(tx, offer.ID, status); err != nil {
			return err
		}
		offer.Status = status.String()

		if status == negotiation.Accepted {
			res := tx.Model(&model.Vehicle{}).
				Where("id = ? AND status = ?", offer.VehicleID, model.VehicleStatusActive).
				Update("status", model.VehicleStatusReserved)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNegotiationClosed
			}
		}
		return afterOfferWrite(tx, offer, event)
	})
}

// lockConversation 串行化同一会话内的议价写操作（SQLite 下忽略行锁）
func lockConversation(tx *gorm.DB, convID uint64) error {
	var conv model.Conversation
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&conv, convID).Error
}

// ensureOpen 车辆不再在售，或同一车辆任一会话已有报价被接受，即视为议价结束。
// 锁住车辆行，同一车辆不同会话的接受操作在此串行
func ensureOpen(tx *gorm.DB, vehicleID uint64) error {
	var vehicle model.Vehicle
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "status").
		First(&vehicle, vehicleID).Error
	if err != nil {
		return err
	}
	if vehicle.Status != model.VehicleStatusActive {
		return ErrNegotiationClosed
	}

	var accepted int64
	err = tx.Model(&model.Offer{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, negotiation.Accepted.String()).
		Count(&accepted).Error
	if err != nil {
		return err
	}
	if accepted > 0 {
		return ErrNegotiationClosed
	}
	return nil
}

// compareAndSetStatus 只有仍为 PENDING 的报价才会被更新
func compareAndSetStatus(tx *gorm.DB, offerID uint64, to negotiation.Status) error {
	if !negotiation.CanTransition(negotiation.Pending, to) {
		return ErrOfferStale
	}
	res := tx.Model(&model.Offer{}).
		Where("id = ? AND status = ?", offerID, negotiation.Pending.String()).
		Updates(map[string]interface{}{
			"status":     to.String(),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOfferStale
	}
	return nil
}

func afterOfferWrite(tx *gorm.DB, offer *model.Offer, event *model.NegotiationEvent) error {
	if err := touchConversation(tx, offer.ConversationID, time.Now()); err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	event.ConversationID = offer.ConversationID
	event.OfferID = offer.ID
	return tx.Create(event).Error
}
