package model

import "time"

// Conversation 买家-卖家-车辆 三元组唯一确定的会话
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID      string    `gorm:"type:varchar(36);uniqueIndex:idx_conv_public_id;not null" json:"publicId"`
	BuyerID       uint64    `gorm:"not null;uniqueIndex:idx_buyer_vehicle;index:idx_conv_buyer" json:"buyerId"`
	SellerID      uint64    `gorm:"not null;index:idx_conv_seller" json:"sellerId"`
	VehicleID     uint64    `gorm:"not null;uniqueIndex:idx_buyer_vehicle" json:"vehicleId"`
	BuyerRemoved  bool      `gorm:"not null;default:false" json:"buyerRemoved"`  // 买家侧软删除
	SellerRemoved bool      `gorm:"not null;default:false" json:"sellerRemoved"` // 卖家侧软删除
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Buyer   User    `gorm:"foreignKey:BuyerID;references:ID" json:"-"`
	Seller  User    `gorm:"foreignKey:SellerID;references:ID" json:"-"`
	Vehicle Vehicle `gorm:"foreignKey:VehicleID;references:ID" json:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// IsParticipant 判断用户是否为会话参与方
func (c *Conversation) IsParticipant(userID uint64) bool {
	return userID != 0 && (c.BuyerID == userID || c.SellerID == userID)
}

// Counterpart 返回对方用户 ID
func (c *Conversation) Counterpart(userID uint64) uint64 {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}
