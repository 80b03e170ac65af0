package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NegotiationAudit 议价事件审计记录，按 event_id 去重
type NegotiationAudit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID        string             `bson:"event_id" json:"eventId"`
	Kind           string             `bson:"kind" json:"kind"`
	ConversationID uint64             `bson:"conversation_id" json:"conversationId"`
	OfferID        uint64             `bson:"offer_id,omitempty" json:"offerId,omitempty"`
	ActorID        uint64             `bson:"actor_id" json:"actorId"`
	Amount         int64              `bson:"amount,omitempty" json:"amount,omitempty"`
	Status         string             `bson:"status,omitempty" json:"status,omitempty"`
	OccurredAt     time.Time          `bson:"occurred_at" json:"occurredAt"`
	ReceivedAt     time.Time          `bson:"received_at" json:"receivedAt"`
}
