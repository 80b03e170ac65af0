package model

import "time"

// NegotiationEvent 议价事件发件箱，与状态变更在同一事务内写入
type NegotiationEvent struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID        string     `gorm:"type:varchar(36);uniqueIndex:idx_event_id;not null" json:"eventId"`
	Kind           string     `gorm:"type:varchar(32);not null" json:"kind"`
	ConversationID uint64     `gorm:"not null" json:"conversationId"`
	OfferID        uint64     `gorm:"not null;default:0" json:"offerId"`
	ActorID        uint64     `gorm:"not null" json:"actorId"`
	Payload        string     `gorm:"type:text" json:"payload"`
	PublishedAt    *time.Time `gorm:"index" json:"publishedAt"`
	Attempts       int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (NegotiationEvent) TableName() string { return "negotiation_events" }

const (
	EventConversationStarted = "conversation.started"
	EventMessageSent         = "message.sent"
	EventOfferCreated        = "offer.created"
	EventOfferCountered      = "offer.countered"
	EventOfferAccepted       = "offer.accepted"
	EventOfferRejected       = "offer.rejected"
)

// NegotiationEventPayload 事件负载，携带双方 ID 以便推送时不必回表
type NegotiationEventPayload struct {
	BuyerID  uint64 `json:"buyerId"`
	SellerID uint64 `json:"sellerId"`
	Amount   int64  `json:"amount,omitempty"`
	Status   string `json:"status,omitempty"`
}
