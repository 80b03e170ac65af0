package api

import (
	"Motorway/internal/api/middleware"
	"Motorway/internal/pkg/logger"
	"Motorway/internal/pkg/security"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, tokens *security.TokenManager, logOut io.Writer) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logOut)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		apiGroup.GET("/vehicles/search", group.VehicleHandler.SearchVehicles)
		apiGroup.GET("/ws", group.WsHandler.Connect)

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware(tokens))

		convGroup := authGroup.Group("/conversations")
		{
			convGroup.GET("", group.ConversationHandler.ListConversations)
			convGroup.POST("", group.ConversationHandler.StartConversation)
			convGroup.GET("/:id", group.ConversationHandler.GetConversation)
			convGroup.DELETE("/:id", group.ConversationHandler.RemoveConversation)
			convGroup.POST("/:id/messages", group.ConversationHandler.SendMessage)
			convGroup.POST("/:id/read", group.ConversationHandler.MarkRead)
			convGroup.GET("/:id/history", group.ConversationHandler.GetHistory)
		}

		offerGroup := authGroup.Group("/offers")
		{
			offerGroup.POST("", group.OfferHandler.CreateOffer)
			offerGroup.POST("/:id/counter", group.OfferHandler.CounterOffer)
			offerGroup.POST("/:id/accept", group.OfferHandler.AcceptOffer)
			offerGroup.POST("/:id/decline", group.OfferHandler.DeclineOffer)
			offerGroup.POST("/:id/respond", group.OfferHandler.RespondOffer)
		}
	}

	return r
}
