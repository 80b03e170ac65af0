package wire

import (
	"Motorway/internal/api"
	"Motorway/internal/api/config"
	"Motorway/internal/api/handler"
	"Motorway/internal/job"
	"Motorway/internal/pkg/cron"
	"Motorway/internal/pkg/es"
	"Motorway/internal/pkg/kafka"
	"Motorway/internal/pkg/minio"
	"Motorway/internal/pkg/mongo"
	"Motorway/internal/pkg/redis"
	"Motorway/internal/pkg/security"
	"Motorway/internal/repository"
	"Motorway/internal/service"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Infra 外部依赖连接，由 main 负责创建与关闭
type Infra struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Mongo   *mongodriver.Database
	Storage *minio.Storage
	ES      *elasticsearch.TypedClient
	LogOut  io.Writer
}

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router        *gin.Engine
	DB            *gorm.DB
	KafkaManager  *kafka.ConsumerManager
	CronMgr       *cron.Manager
	EventProducer *kafka.EventProducer
}

func BuildApplication(cfg *config.Config, infra *Infra) (*ApplicationContainer, error) {
	convRepo := repository.NewConversationRepo(infra.DB)
	messageRepo := repository.NewMessageRepo(infra.DB)
	offerRepo := repository.NewOfferRepo(infra.DB)
	vehicleRepo := repository.NewVehicleRepo(infra.DB)
	eventRepo := repository.NewEventRepo(infra.DB)
	vehicleESRepo := es.NewVehicleRepo(infra.ES, cfg.Elastic.VehicleIndex)
	auditRepo := mongo.NewAuditRepo(infra.Mongo)

	conversationService := service.NewConversationService(convRepo, messageRepo, offerRepo, vehicleRepo, infra.Redis, infra.Storage, cfg.Negotiation)
	negotiationService := service.NewNegotiationService(convRepo, messageRepo, offerRepo, infra.Redis, infra.Redis, cfg.Negotiation)
	vehicleService := service.NewVehicleService(vehicleESRepo, infra.Storage)
	historyService := service.NewHistoryService(convRepo, auditRepo)

	tokens := security.NewTokenManager(cfg.JWT)
	handlers := &api.HandlersGroup{
		ConversationHandler: handler.NewConversationHandler(conversationService, negotiationService, historyService),
		OfferHandler:        handler.NewOfferHandler(negotiationService),
		VehicleHandler:      handler.NewVehicleHandler(vehicleService),
		WsHandler:           handler.NewWsHandler(tokens, infra.Redis),
	}
	router := api.SetupRouter(handlers, tokens, infra.LogOut)

	producer, err := kafka.NewEventProducer(cfg)
	if err != nil {
		return nil, err
	}
	relayJob := job.NewEventRelayJob(eventRepo, producer, infra.Redis, cfg.Negotiation.RelayBatch, cfg.Negotiation.RelayMaxAttempts)
	cronMgr := cron.NewCronManager(relayJob, cfg.Negotiation.RelaySpec)

	kafkaMgr, err := kafka.NewConsumerManager(cfg,
		kafka.NewNegotiationEventHandler(infra.Redis, auditRepo),
		kafka.NewVehicleHandler(vehicleRepo, vehicleESRepo),
	)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	return &ApplicationContainer{
		Router:        router,
		DB:            infra.DB,
		KafkaManager:  kafkaMgr,
		CronMgr:       cronMgr,
		EventProducer: producer,
	}, nil
}
