package service

import (
	"Motorway/internal/api/config"
	"Motorway/internal/api/dto"
	"Motorway/internal/model"
	"Motorway/internal/pkg/consts"
	"Motorway/internal/pkg/negotiation"
	"Motorway/internal/pkg/util"
	"Motorway/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NegotiationService 报价的创建、还价、接受/拒绝以及会话内发消息
// 所有操作失败即返回，不做任何自动重试
type NegotiationService interface {
	CreateOffer(ctx context.Context, callerID uint64, req *dto.CreateOfferReq) (*dto.OfferDTO, error)
	CounterOffer(ctx context.Context, callerID uint64, offerRef string, amount int64) (*dto.OfferDTO, error)
	RespondToOffer(ctx context.Context, callerID uint64, offerRef string, status string) (*dto.OfferDTO, error)
	SendMessage(ctx context.Context, callerID uint64, convRef string, req *dto.SendMessageReq) (*dto.MessageDTO, error)
}

type negotiationServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo repository.MessageRepo
	offerRepo   repository.OfferRepo
	cache       Cache
	locker      Locker
	lockTTL     time.Duration
}

func NewNegotiationService(
	convRepo repository.ConversationRepo,
	messageRepo repository.MessageRepo,
	offerRepo repository.OfferRepo,
	cache Cache,
	locker Locker,
	cfg config.NegotiationConfig,
) NegotiationService {
	lockTTL := time.Duration(cfg.LockTTL) * time.Second
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &negotiationServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		offerRepo:   offerRepo,
		cache:       cache,
		locker:      locker,
		lockTTL:     lockTTL,
	}
}

// CreateOffer 金额校验先于任何存储访问
func (s *negotiationServiceImpl) CreateOffer(ctx context.Context, callerID uint64, req *dto.CreateOfferReq) (*dto.OfferDTO, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ConversationID) == "" || req.RecipientID == 0 || req.VehicleID == 0 {
		return nil, ErrParamInvalid
	}

	conv, err := loadParticipantConversation(ctx, s.convRepo, callerID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != conv.Counterpart(callerID) {
		return nil, ErrRecipientMismatch
	}
	if req.VehicleID != conv.VehicleID {
		return nil, ErrVehicleMismatch
	}

	offer := &model.Offer{
		PublicID:       uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       callerID,
		RecipientID:    req.RecipientID,
		VehicleID:      conv.VehicleID,
		Amount:         req.Amount,
	}
	err = s.withConversationLock(ctx, conv.ID, func() error {
		event := newEvent(model.EventOfferCreated, callerID, conv, req.Amount, negotiation.Pending.String())
		return s.offerRepo.CreateOffer(ctx, offer, event)
	})
	if err != nil {
		return nil, mapNegotiationErr(ctx, err)
	}

	invalidate(ctx, s.cache, OpCreateOffer, conv, callerID)
	return toOfferDTO(offer, callerID, false), nil
}

// CounterOffer 原报价置为 COUNTERED，同时生成角色互换的新报价
func (s *negotiationServiceImpl) CounterOffer(ctx context.Context, callerID uint64, offerRef string, amount int64) (*dto.OfferDTO, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	original, conv, err := s.loadRespondableOffer(ctx, callerID, offerRef)
	if err != nil {
		return nil, err
	}

	counter := &model.Offer{
		PublicID:       uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       callerID,
		RecipientID:    original.SenderID,
		VehicleID:      original.VehicleID,
		Amount:         amount,
	}
	err = s.withConversationLock(ctx, conv.ID, func() error {
		event := newEvent(model.EventOfferCountered, callerID, conv, amount, negotiation.Pending.String())
		return s.offerRepo.CounterOffer(ctx, original.ID, counter, event)
	})
	if err != nil {
		return nil, mapNegotiationErr(ctx, err)
	}

	invalidate(ctx, s.cache, OpCounterOffer, conv, callerID)
	return toOfferDTO(counter, callerID, false), nil
}

// RespondToOffer status 只能是 ACCEPTED 或 REJECTED
func (s *negotiationServiceImpl) RespondToOffer(ctx context.Context, callerID uint64, offerRef string, status string) (*dto.OfferDTO, error) {
	st, err := negotiation.ParseStatus(status)
	if err != nil || !negotiation.IsResponse(st) {
		return nil, ErrStatusInvalid
	}

	offer, conv, err := s.loadRespondableOffer(ctx, callerID, offerRef)
	if err != nil {
		return nil, err
	}

	kind := model.EventOfferRejected
	if st == negotiation.Accepted {
		kind = model.EventOfferAccepted
	}
	err = s.withConversationLock(ctx, conv.ID, func() error {
		event := newEvent(kind, callerID, conv, offer.Amount, st.String())
		return s.offerRepo.RespondToOffer(ctx, offer, st, event)
	})
	if err != nil {
		return nil, mapNegotiationErr(ctx, err)
	}

	if st == negotiation.Accepted {
		invalidateVehicle(ctx, s.cache, s.convRepo, conv.VehicleID, callerID)
	} else {
		invalidate(ctx, s.cache, OpRespondToOffer, conv, callerID)
	}
	return toOfferDTO(offer, callerID, st == negotiation.Accepted), nil
}

// SendMessage 普通消息不占用议价锁
func (s *negotiationServiceImpl) SendMessage(ctx context.Context, callerID uint64, convRef string, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	conv, err := loadParticipantConversation(ctx, s.convRepo, callerID, convRef)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		PublicID:       uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       callerID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	event := newEvent(model.EventMessageSent, callerID, conv, 0, "")
	if err = s.messageRepo.CreateMessage(ctx, msg, event); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, OpSendMessage, conv, callerID)
	return toMessageDTO(msg, callerID), nil
}

// loadRespondableOffer 校验调用方是待处理报价的接收方
func (s *negotiationServiceImpl) loadRespondableOffer(ctx context.Context, callerID uint64, offerRef string) (*model.Offer, *model.Conversation, error) {
	id, publicID := util.ParseRef(strings.TrimSpace(offerRef))
	var (
		offer *model.Offer
		err   error
	)
	switch {
	case id > 0:
		offer, err = s.offerRepo.GetOffer(ctx, id)
	case publicID != "":
		offer, err = s.offerRepo.GetOfferByPublicID(ctx, publicID)
	default:
		return nil, nil, ErrParamInvalid
	}
	if err != nil {
		return nil, nil, mapNotFound(err, ErrOfferNotFound)
	}

	conv, err := loadParticipantConversation(ctx, s.convRepo, callerID, strconv.FormatUint(offer.ConversationID, 10))
	if err != nil {
		return nil, nil, err
	}
	if offer.RecipientID != callerID {
		return nil, nil, ErrNotRecipient
	}
	if negotiation.Status(offer.Status) != negotiation.Pending {
		return nil, nil, ErrOfferNotPending
	}
	return offer, conv, nil
}

// withConversationLock 拿不到锁立即返回忙，不排队等待
func (s *negotiationServiceImpl) withConversationLock(ctx context.Context, convID uint64, fn func() error) error {
	key := consts.NegotiationLock + strconv.FormatUint(convID, 10)
	token := uuid.NewString()

	ok, err := s.locker.TryLock(ctx, key, token, s.lockTTL, 0)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNegotiationBusy
	}
	defer func() {
		if err := s.locker.UnLock(context.WithoutCancel(ctx), key, token); err != nil {
			log.WarnContext(ctx, "release negotiation lock failed", "key", key, "err", err)
		}
	}()
	return fn()
}

func validateAmount(amount int64) error {
	if amount <= 0 || amount > consts.MaxOfferAmount {
		return ErrAmountInvalid
	}
	return nil
}

// mapNegotiationErr 将仓储层的状态冲突翻译为业务错误
func mapNegotiationErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrNegotiationBusy):
		return err
	case errors.Is(err, repository.ErrOfferStale):
		return ErrOfferNotPending
	case errors.Is(err, repository.ErrPendingOfferExists):
		return ErrPendingOfferExists
	case errors.Is(err, repository.ErrNegotiationClosed):
		return ErrNegotiationConcluded
	}
	log.ErrorContext(ctx, "negotiation transition failed", "err", err)
	return err
}
