package model

import "time"

// Offer 会话内的报价，状态只能从 PENDING 单向流转
type Offer struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID       string    `gorm:"type:varchar(36);uniqueIndex:idx_offer_public_id;not null" json:"publicId"`
	ConversationID uint64    `gorm:"not null;index:idx_offer_conv_status" json:"conversationId"`
	SenderID       uint64    `gorm:"not null" json:"senderId"`
	RecipientID    uint64    `gorm:"not null" json:"recipientId"`
	VehicleID      uint64    `gorm:"not null;index:idx_offer_vehicle_status" json:"vehicleId"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Status         string    `gorm:"type:varchar(16);not null;index:idx_offer_conv_status;index:idx_offer_vehicle_status" json:"status"`
	ParentOfferID  *uint64   `gorm:"index" json:"parentOfferId"` // 被本报价还价的上一条报价
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Offer) TableName() string { return "offers" }
