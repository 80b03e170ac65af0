package dto

import "time"

// ParticipantDTO 会话参与方
type ParticipantDTO struct {
	ID        uint64 `json:"id"`
	PublicID  string `json:"publicId"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
}

// ConversationSnapshotDTO 会话详情，一次性返回全部消息与报价
type ConversationSnapshotDTO struct {
	ID           uint64            `json:"id"`
	PublicID     string            `json:"publicId"`
	Buyer        ParticipantDTO    `json:"buyer"`
	Seller       ParticipantDTO    `json:"seller"`
	Vehicle      VehicleSummaryDTO `json:"vehicle"`
	Messages     []*MessageDTO     `json:"messages"`
	Offers       []*OfferDTO       `json:"offers"`
	Feed         []*FeedItemDTO    `json:"feed"`
	PendingOffer *OfferDTO         `json:"pendingOffer"`
	Concluded    bool              `json:"concluded"`
	Role         string            `json:"role"` // buyer / seller
}

// FeedItemDTO 合并后的时间线条目，Message 与 Offer 二选一
type FeedItemDTO struct {
	Kind    string      `json:"kind"`
	Message *MessageDTO `json:"message,omitempty"`
	Offer   *OfferDTO   `json:"offer,omitempty"`
}

// ConversationItemDTO 会话列表项
type ConversationItemDTO struct {
	ID            uint64            `json:"id"`
	PublicID      string            `json:"publicId"`
	Role          string            `json:"role"`
	Counterpart   ParticipantDTO    `json:"counterpart"`
	Vehicle       VehicleSummaryDTO `json:"vehicle"`
	LastMessage   *MessageDTO       `json:"lastMessage"`
	UnreadCount   int64             `json:"unreadCount"`
	LastMessageAt time.Time         `json:"lastMessageAt"`
}

// StartConversationReq 买家在车辆详情页发起咨询
type StartConversationReq struct {
	VehicleID string `json:"vehicleId" validate:"required"`
	Content   string `json:"content" validate:"required,max=2000"`
}

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// MessageDTO 消息明细
type MessageDTO struct {
	ID             uint64    `json:"id"`
	PublicID       string    `json:"publicId"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       uint64    `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	IsSystem       bool      `json:"isSystem"`
	IsMine         bool      `json:"isMine"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NegotiationHistoryItemDTO 议价审计记录
type NegotiationHistoryItemDTO struct {
	EventID    string    `json:"eventId"`
	Kind       string    `json:"kind"`
	OfferID    uint64    `json:"offerId,omitempty"`
	ActorID    uint64    `json:"actorId"`
	Amount     int64     `json:"amount,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
