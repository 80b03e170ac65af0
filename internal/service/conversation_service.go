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
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ConversationService 会话读取与会话级操作
type ConversationService interface {
	LoadConversation(ctx context.Context, viewerID uint64, ref string) (*dto.ConversationSnapshotDTO, error)
	ListConversations(ctx context.Context, viewerID uint64) ([]*dto.ConversationItemDTO, error)
	StartConversation(ctx context.Context, buyerID uint64, req *dto.StartConversationReq) (*dto.ConversationSnapshotDTO, error)
	RemoveConversation(ctx context.Context, viewerID uint64, ref string) error
	MarkRead(ctx context.Context, viewerID uint64, ref string) error
}

// conversationSnapshot 与查看者无关的快照，isMine / canRespond 在读出后计算
type conversationSnapshot struct {
	Conversation *model.Conversation `json:"conversation"`
	Buyer        *model.User         `json:"buyer"`
	Seller       *model.User         `json:"seller"`
	Vehicle      *model.Vehicle      `json:"vehicle"`
	Messages     []*model.Message    `json:"messages"`
	Offers       []*model.Offer      `json:"offers"`
}

type conversationServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo repository.MessageRepo
	offerRepo   repository.OfferRepo
	vehicleRepo repository.VehicleRepo
	cache       Cache
	signer      MediaSigner
	snapshotTTL time.Duration
	listTTL     time.Duration
}

func NewConversationService(
	convRepo repository.ConversationRepo,
	messageRepo repository.MessageRepo,
	offerRepo repository.OfferRepo,
	vehicleRepo repository.VehicleRepo,
	cache Cache,
	signer MediaSigner,
	cfg config.NegotiationConfig,
) ConversationService {
	return &conversationServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		offerRepo:   offerRepo,
		vehicleRepo: vehicleRepo,
		cache:       cache,
		signer:      signer,
		snapshotTTL: time.Duration(cfg.SnapshotTTL) * time.Second,
		listTTL:     time.Duration(cfg.ListTTL) * time.Second,
	}
}

// LoadConversation 一次性返回会话全部消息与报价（无分页）
func (s *conversationServiceImpl) LoadConversation(ctx context.Context, viewerID uint64, ref string) (*dto.ConversationSnapshotDTO, error) {
	convID, err := resolveConversationID(ctx, s.convRepo, ref)
	if err != nil {
		return nil, err
	}
	snap, err := s.getSnapshot(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !snap.Conversation.IsParticipant(viewerID) {
		return nil, ErrNotParticipant
	}
	return s.render(ctx, snap, viewerID), nil
}

func (s *conversationServiceImpl) getSnapshot(ctx context.Context, convID uint64) (*conversationSnapshot, error) {
	key := SnapshotKey(convID)
	if val, err := s.cache.GetValue(ctx, key); err != nil {
		log.WarnContext(ctx, "read snapshot cache failed", "key", key, "err", err)
	} else if val != "" {
		var snap conversationSnapshot
		if err = json.Unmarshal([]byte(val), &snap); err == nil && snap.Conversation != nil {
			return &snap, nil
		}
		log.WarnContext(ctx, "broken snapshot cache entry", "key", key, "err", err)
	}

	version, fill := readVersion(ctx, s.cache, key)
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, mapNotFound(err, ErrConversationNotFound)
	}

	snap := &conversationSnapshot{
		Conversation: conv,
		Buyer:        &conv.Buyer,
		Seller:       &conv.Seller,
		Vehicle:      &conv.Vehicle,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Messages, err = s.messageRepo.ListByConversation(gctx, convID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Offers, err = s.offerRepo.ListByConversation(gctx, convID)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil && fill {
		fillIfUnchanged(ctx, s.cache, key, version, data, s.snapshotTTL)
	}
	return snap, nil
}

func (s *conversationServiceImpl) render(ctx context.Context, snap *conversationSnapshot, viewerID uint64) *dto.ConversationSnapshotDTO {
	conv := snap.Conversation
	concluded := negotiation.Concluded(snap.Vehicle.Status, snap.Offers)

	out := &dto.ConversationSnapshotDTO{
		ID:        conv.ID,
		PublicID:  conv.PublicID,
		Buyer:     toParticipantDTO(ctx, s.signer, snap.Buyer),
		Seller:    toParticipantDTO(ctx, s.signer, snap.Seller),
		Vehicle:   toVehicleDTO(ctx, s.signer, snap.Vehicle),
		Messages:  make([]*dto.MessageDTO, 0, len(snap.Messages)),
		Offers:    make([]*dto.OfferDTO, 0, len(snap.Offers)),
		Concluded: concluded,
		Role:      roleOf(conv, viewerID),
	}

	msgByID := make(map[uint64]*dto.MessageDTO, len(snap.Messages))
	for _, m := range snap.Messages {
		d := toMessageDTO(m, viewerID)
		msgByID[m.ID] = d
		out.Messages = append(out.Messages, d)
	}
	offerByID := make(map[uint64]*dto.OfferDTO, len(snap.Offers))
	for _, o := range snap.Offers {
		d := toOfferDTO(o, viewerID, concluded)
		offerByID[o.ID] = d
		out.Offers = append(out.Offers, d)
	}
	if pending := negotiation.LatestPending(snap.Offers); pending != nil {
		out.PendingOffer = offerByID[pending.ID]
	}

	feed := negotiation.MergeFeed(snap.Messages, snap.Offers)
	out.Feed = make([]*dto.FeedItemDTO, 0, len(feed))
	for _, item := range feed {
		f := &dto.FeedItemDTO{Kind: string(item.Kind)}
		if item.Kind == negotiation.KindOffer {
			f.Offer = offerByID[item.Offer.ID]
		} else {
			f.Message = msgByID[item.Message.ID]
		}
		out.Feed = append(out.Feed, f)
	}
	return out
}

// ListConversations 当前用户的会话列表，按最后活跃时间倒序
func (s *conversationServiceImpl) ListConversations(ctx context.Context, viewerID uint64) ([]*dto.ConversationItemDTO, error) {
	key := ListKey(viewerID)
	if val, err := s.cache.GetValue(ctx, key); err == nil && val != "" {
		var cached []*dto.ConversationItemDTO
		if err = json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	}

	version, fill := readVersion(ctx, s.cache, key)
	convs, err := s.convRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}

	var (
		unread map[uint64]int64
		last   map[uint64]*model.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unread, err = s.messageRepo.CountUnread(gctx, ids, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		last, err = s.messageRepo.LastMessages(gctx, ids)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	items := make([]*dto.ConversationItemDTO, 0, len(convs))
	for _, c := range convs {
		counterpart := &c.Seller
		if c.SellerID == viewerID {
			counterpart = &c.Buyer
		}
		item := &dto.ConversationItemDTO{
			ID:            c.ID,
			PublicID:      c.PublicID,
			Role:          roleOf(c, viewerID),
			Counterpart:   toParticipantDTO(ctx, s.signer, counterpart),
			Vehicle:       toVehicleDTO(ctx, s.signer, &c.Vehicle),
			UnreadCount:   unread[c.ID],
			LastMessageAt: c.LastMessageAt,
		}
		if m, ok := last[c.ID]; ok {
			item.LastMessage = toMessageDTO(m, viewerID)
		}
		items = append(items, item)
	}

	if data, err := json.Marshal(items); err == nil && fill {
		fillIfUnchanged(ctx, s.cache, key, version, data, s.listTTL)
	}
	return items, nil
}

// StartConversation 买家首次咨询时创建会话，已存在则直接追加消息
func (s *conversationServiceImpl) StartConversation(ctx context.Context, buyerID uint64, req *dto.StartConversationReq) (*dto.ConversationSnapshotDTO, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.resolveVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.SellerID == buyerID {
		return nil, ErrSelfConversation
	}

	msg := &model.Message{
		PublicID:  uuid.NewString(),
		SenderID:  buyerID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	conv, err := s.convRepo.GetByBuyerAndVehicle(ctx, buyerID, vehicle.ID)
	switch {
	case err == nil:
		if err = s.appendMessage(ctx, conv, msg); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if vehicle.Status != model.VehicleStatusActive {
			return nil, ErrNegotiationConcluded
		}
		conv = &model.Conversation{
			PublicID:      uuid.NewString(),
			BuyerID:       buyerID,
			SellerID:      vehicle.SellerID,
			VehicleID:     vehicle.ID,
			LastMessageAt: msg.CreatedAt,
		}
		event := newEvent(model.EventConversationStarted, buyerID, conv, 0, "")
		err = s.convRepo.CreateConversation(ctx, conv, msg, event)
		if err != nil {
			if !repository.IsDuplicateKey(err) {
				return nil, err
			}
			// 并发创建，改为向已存在的会话追加
			if conv, err = s.convRepo.GetByBuyerAndVehicle(ctx, buyerID, vehicle.ID); err != nil {
				return nil, err
			}
			msg.ID = 0
			if err = s.appendMessage(ctx, conv, msg); err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	invalidate(ctx, s.cache, OpStartConversation, conv, buyerID)
	return s.LoadConversation(ctx, buyerID, fmt.Sprint(conv.ID))
}

func (s *conversationServiceImpl) appendMessage(ctx context.Context, conv *model.Conversation, msg *model.Message) error {
	msg.ConversationID = conv.ID
	event := newEvent(model.EventMessageSent, msg.SenderID, conv, 0, "")
	return s.messageRepo.CreateMessage(ctx, msg, event)
}

func (s *conversationServiceImpl) resolveVehicle(ctx context.Context, ref string) (*model.Vehicle, error) {
	id, publicID := util.ParseRef(strings.TrimSpace(ref))
	var (
		v   *model.Vehicle
		err error
	)
	switch {
	case id > 0:
		v, err = s.vehicleRepo.GetVehicleByID(ctx, id)
	case publicID != "":
		v, err = s.vehicleRepo.GetVehicleByPublicID(ctx, publicID)
	default:
		return nil, ErrParamInvalid
	}
	if err != nil {
		return nil, mapNotFound(err, ErrVehicleNotFound)
	}
	return v, nil
}

// RemoveConversation 只对调用方隐藏，对方不受影响
func (s *conversationServiceImpl) RemoveConversation(ctx context.Context, viewerID uint64, ref string) error {
	conv, err := loadParticipantConversation(ctx, s.convRepo, viewerID, ref)
	if err != nil {
		return err
	}
	if err = s.convRepo.MarkRemoved(ctx, conv.ID, viewerID); err != nil {
		return err
	}
	invalidate(ctx, s.cache, OpRemoveConversation, conv, viewerID)
	return nil
}

// MarkRead 将对方发来的消息全部置为已读
func (s *conversationServiceImpl) MarkRead(ctx context.Context, viewerID uint64, ref string) error {
	conv, err := loadParticipantConversation(ctx, s.convRepo, viewerID, ref)
	if err != nil {
		return err
	}
	n, err := s.messageRepo.MarkRead(ctx, conv.ID, viewerID)
	if err != nil {
		return err
	}
	if n > 0 {
		invalidate(ctx, s.cache, OpMarkRead, conv, viewerID)
	}
	return nil
}

// resolveConversationID 数字引用直接使用，公开 ID 需回表
func resolveConversationID(ctx context.Context, repo repository.ConversationRepo, ref string) (uint64, error) {
	id, publicID := util.ParseRef(strings.TrimSpace(ref))
	if id > 0 {
		return id, nil
	}
	if publicID == "" {
		return 0, ErrParamInvalid
	}
	conv, err := repo.GetConversationByPublicID(ctx, publicID)
	if err != nil {
		return 0, mapNotFound(err, ErrConversationNotFound)
	}
	return conv.ID, nil
}

func loadConversation(ctx context.Context, repo repository.ConversationRepo, ref string) (*model.Conversation, error) {
	id, publicID := util.ParseRef(strings.TrimSpace(ref))
	var (
		conv *model.Conversation
		err  error
	)
	switch {
	case id > 0:
		conv, err = repo.GetConversation(ctx, id)
	case publicID != "":
		conv, err = repo.GetConversationByPublicID(ctx, publicID)
	default:
		return nil, ErrParamInvalid
	}
	if err != nil {
		return nil, mapNotFound(err, ErrConversationNotFound)
	}
	return conv, nil
}

func loadParticipantConversation(ctx context.Context, repo repository.ConversationRepo, viewerID uint64, ref string) (*model.Conversation, error) {
	conv, err := loadConversation(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(viewerID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrMessageEmpty
	}
	if len([]rune(content)) > consts.MaxMessageLength {
		return "", ErrParamInvalid
	}
	return content, nil
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
