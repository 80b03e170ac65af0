package model

import "time"

// Message 会话内的聊天消息，创建后不可修改
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID       string    `gorm:"type:varchar(36);uniqueIndex:idx_msg_public_id;not null" json:"publicId"`
	ConversationID uint64    `gorm:"not null;index:idx_msg_conv_created" json:"conversationId"`
	SenderID       uint64    `gorm:"not null" json:"senderId"`
	Content        string    `gorm:"type:varchar(2000);not null" json:"content"`
	IsRead         bool      `gorm:"not null;default:false" json:"isRead"`
	IsSystem       bool      `gorm:"not null;default:false" json:"isSystem"`
	CreatedAt      time.Time `gorm:"index:idx_msg_conv_created" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }
