package kafka

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/consts"
	"Motorway/internal/pkg/mongo"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Publisher 向用户个人频道推送
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// PushMessage 推送给前端的提示，前端收到后重新拉取会话
type PushMessage struct {
	Type           string `json:"type"`
	Event          string `json:"event"`
	ConversationID uint64 `json:"conversationId"`
	OfferID        uint64 `json:"offerId,omitempty"`
	ActorID        uint64 `json:"actorId"`
}

const PushTypeNegotiation = "negotiation"

// NegotiationEventHandler 议价事件的推送与审计
type NegotiationEventHandler struct {
	publisher Publisher
	auditRepo mongo.AuditRepo
}

func NewNegotiationEventHandler(publisher Publisher, auditRepo mongo.AuditRepo) *NegotiationEventHandler {
	return &NegotiationEventHandler{publisher: publisher, auditRepo: auditRepo}
}

func (s *NegotiationEventHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("negotiation event consumer setup")
	return nil
}

func (s *NegotiationEventHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("negotiation event consumer cleanup")
	return nil
}

func (s *NegotiationEventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.Handle)
}

// Handle 先写审计再推送；推送失败不重试，前端以轮询兜底
func (s *NegotiationEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev model.NegotiationEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil || ev.EventID == "" {
		log.ErrorContext(ctx, "bad negotiation event", "offset", msg.Offset, "err", err)
		return ErrSkipMessage
	}
	var payload model.NegotiationEventPayload
	if ev.Payload != "" {
		if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
			log.ErrorContext(ctx, "bad negotiation event payload", "event_id", ev.EventID, "err", err)
			return ErrSkipMessage
		}
	}

	err := s.auditRepo.Append(ctx, &mongo.NegotiationAudit{
		EventID:        ev.EventID,
		Kind:           ev.Kind,
		ConversationID: ev.ConversationID,
		OfferID:        ev.OfferID,
		ActorID:        ev.ActorID,
		Amount:         payload.Amount,
		Status:         payload.Status,
		OccurredAt:     ev.CreatedAt,
		ReceivedAt:     time.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "append negotiation audit")
	}

	push, _ := json.Marshal(&PushMessage{
		Type:           PushTypeNegotiation,
		Event:          ev.Kind,
		ConversationID: ev.ConversationID,
		OfferID:        ev.OfferID,
		ActorID:        ev.ActorID,
	})
	for _, uid := range []uint64{payload.BuyerID, payload.SellerID} {
		if uid == 0 {
			continue
		}
		channel := consts.IMUserChannelKey + strconv.FormatUint(uid, 10)
		if err = s.publisher.Publish(ctx, channel, string(push)); err != nil {
			log.WarnContext(ctx, "push negotiation event failed", "channel", channel, "err", err)
		}
	}
	return nil
}
