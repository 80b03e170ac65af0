package service

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/pkg/mongo"
	"Motorway/internal/repository"
	"context"

	"github.com/jinzhu/copier"
)

const historyLimit = 200

// HistoryService 议价审计日志查询
type HistoryService interface {
	ListHistory(ctx context.Context, viewerID uint64, convRef string) ([]*dto.NegotiationHistoryItemDTO, error)
}

type historyServiceImpl struct {
	convRepo  repository.ConversationRepo
	auditRepo mongo.AuditRepo
}

func NewHistoryService(convRepo repository.ConversationRepo, auditRepo mongo.AuditRepo) HistoryService {
	return &historyServiceImpl{convRepo: convRepo, auditRepo: auditRepo}
}

// ListHistory 审计日志由消费端异步写入，可能落后于会话快照
func (s *historyServiceImpl) ListHistory(ctx context.Context, viewerID uint64, convRef string) ([]*dto.NegotiationHistoryItemDTO, error) {
	conv, err := loadParticipantConversation(ctx, s.convRepo, viewerID, convRef)
	if err != nil {
		return nil, err
	}

	records, err := s.auditRepo.ListByConversation(ctx, conv.ID, historyLimit)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.NegotiationHistoryItemDTO, 0, len(records))
	if err = copier.Copy(&out, &records); err != nil {
		return nil, err
	}
	return out, nil
}
