package api

import "Motorway/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ConversationHandler *handler.ConversationHandler
	OfferHandler        *handler.OfferHandler
	VehicleHandler      *handler.VehicleHandler
	WsHandler           *handler.WsHandler
}
