package handler

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/pkg/negotiation"
	"Motorway/internal/pkg/response"
	"Motorway/internal/service"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	negotiationService service.NegotiationService
}

func NewOfferHandler(negotiationService service.NegotiationService) *OfferHandler {
	return &OfferHandler{negotiationService: negotiationService}
}

// CreateOffer 发起报价
func (s *OfferHandler) CreateOffer(c *gin.Context) {
	var req dto.CreateOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.negotiationService.CreateOffer(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CounterOffer 对待处理报价还价
func (s *OfferHandler) CounterOffer(c *gin.Context) {
	var req dto.CounterOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.negotiationService.CounterOffer(c.Request.Context(), currentUser(c), c.Param("id"), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// RespondOffer 通过请求体指定接受或拒绝
func (s *OfferHandler) RespondOffer(c *gin.Context) {
	var req dto.RespondOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	s.respond(c, req.Status)
}

func (s *OfferHandler) AcceptOffer(c *gin.Context) {
	s.respond(c, string(negotiation.Accepted))
}

func (s *OfferHandler) DeclineOffer(c *gin.Context) {
	s.respond(c, string(negotiation.Rejected))
}

func (s *OfferHandler) respond(c *gin.Context, status string) {
	res, err := s.negotiationService.RespondToOffer(c.Request.Context(), currentUser(c), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
