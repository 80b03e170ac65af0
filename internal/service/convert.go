package service

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/model"
	"Motorway/internal/pkg/consts"
	"Motorway/internal/pkg/negotiation"
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

func toParticipantDTO(ctx context.Context, signer MediaSigner, u *model.User) dto.ParticipantDTO {
	if u == nil {
		return dto.ParticipantDTO{}
	}
	avatar := u.AvatarKey
	if avatar == "" {
		avatar = consts.DefaultAvatarKey
	}
	return dto.ParticipantDTO{
		ID:        u.ID,
		PublicID:  u.PublicID,
		Nickname:  u.Nickname,
		AvatarURL: sign(ctx, signer, avatar),
	}
}

func toVehicleDTO(ctx context.Context, signer MediaSigner, v *model.Vehicle) dto.VehicleSummaryDTO {
	var out dto.VehicleSummaryDTO
	if v == nil {
		return out
	}
	_ = copier.Copy(&out, v)
	cover := v.CoverKey
	if cover == "" {
		cover = consts.DefaultCoverKey
	}
	out.CoverURL = sign(ctx, signer, cover)
	return out
}

func toMessageDTO(m *model.Message, viewerID uint64) *dto.MessageDTO {
	out := &dto.MessageDTO{}
	_ = copier.Copy(out, m)
	out.IsMine = negotiation.IsMine(m.SenderID, viewerID)
	return out
}

func toOfferDTO(o *model.Offer, viewerID uint64, concluded bool) *dto.OfferDTO {
	out := &dto.OfferDTO{}
	_ = copier.Copy(out, o)
	out.IsMine = negotiation.IsMine(o.SenderID, viewerID)
	out.CanRespond = negotiation.CanRespond(o, viewerID, concluded)
	return out
}

func sign(ctx context.Context, signer MediaSigner, key string) string {
	if signer == nil {
		return ""
	}
	return signer.SignURL(ctx, key)
}

func roleOf(conv *model.Conversation, viewerID uint64) string {
	if conv.BuyerID == viewerID {
		return "buyer"
	}
	return "seller"
}

// newEvent 构造发件箱事件，ConversationID / OfferID 由仓储在事务内回填
func newEvent(kind string, actorID uint64, conv *model.Conversation, amount int64, status string) *model.NegotiationEvent {
	payload, _ := json.Marshal(&model.NegotiationEventPayload{
		BuyerID:  conv.BuyerID,
		SellerID: conv.SellerID,
		Amount:   amount,
		Status:   status,
	})
	return &model.NegotiationEvent{
		EventID:        uuid.NewString(),
		Kind:           kind,
		ConversationID: conv.ID,
		ActorID:        actorID,
		Payload:        string(payload),
		CreatedAt:      time.Now(),
	}
}
