package dto

import "time"

// CreateOfferReq 新报价
type CreateOfferReq struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Amount         int64  `json:"amount" validate:"gt=0"`
	RecipientID    uint64 `json:"recipientId" validate:"required"`
	VehicleID      uint64 `json:"vehicleId" validate:"required"`
}

// CounterOfferReq 还价
type CounterOfferReq struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

// RespondOfferReq 接受或拒绝
type RespondOfferReq struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// OfferDTO 报价明细，IsMine / CanRespond 按查看者计算
type OfferDTO struct {
	ID             uint64    `json:"id"`
	PublicID       string    `json:"publicId"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       uint64    `json:"senderId"`
	RecipientID    uint64    `json:"recipientId"`
	VehicleID      uint64    `json:"vehicleId"`
	Amount         int64     `json:"amount"`
	Status         string    `json:"status"`
	ParentOfferID  *uint64   `json:"parentOfferId"`
	IsMine         bool      `json:"isMine"`
	CanRespond     bool      `json:"canRespond"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
