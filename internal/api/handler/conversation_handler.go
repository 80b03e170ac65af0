package handler

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/pkg/logger"
	"Motorway/internal/pkg/response"
	"Motorway/internal/pkg/util"
	"Motorway/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversationService service.ConversationService
	negotiationService  service.NegotiationService
	historyService      service.HistoryService
}

func NewConversationHandler(
	conversationService service.ConversationService,
	negotiationService service.NegotiationService,
	historyService service.HistoryService,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		negotiationService:  negotiationService,
		historyService:      historyService,
	}
}

// currentUser 鉴权中间件注入的当前用户 ID
func currentUser(c *gin.Context) uint64 {
	return c.GetUint64(logger.UserIDKey)
}

// GetConversation 会话详情：消息、报价与合并后的时间线
func (s *ConversationHandler) GetConversation(c *gin.Context) {
	res, err := s.conversationService.LoadConversation(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListConversations 当前用户的会话列表
func (s *ConversationHandler) ListConversations(c *gin.Context) {
	res, err := s.conversationService.ListConversations(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// StartConversation 买家就某辆车发起咨询
func (s *ConversationHandler) StartConversation(c *gin.Context) {
	var req dto.StartConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.conversationService.StartConversation(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendMessage 发送聊天消息
func (s *ConversationHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.negotiationService.SendMessage(c.Request.Context(), currentUser(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkRead 标记对方消息为已读
func (s *ConversationHandler) MarkRead(c *gin.Context) {
	if err := s.conversationService.MarkRead(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveConversation 仅对当前用户隐藏会话
func (s *ConversationHandler) RemoveConversation(c *gin.Context) {
	if err := s.conversationService.RemoveConversation(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetHistory 议价审计记录
func (s *ConversationHandler) GetHistory(c *gin.Context) {
	res, err := s.historyService.ListHistory(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
