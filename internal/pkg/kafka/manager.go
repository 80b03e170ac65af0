package kafka

import (
	"Motorway/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

type consumer struct {
	name    string
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	consumers []*consumer
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, eventHandler *NegotiationEventHandler, vehicleHandler *VehicleHandler) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	eventGroup, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaEventTopic.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	vehicleGroup, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaVehicleTopic.GroupID, saramaCfg)
	if err != nil {
		_ = eventGroup.Close()
		return nil, err
	}

	return &ConsumerManager{consumers: []*consumer{
		{name: "negotiation-event", topic: cfg.KafkaEventTopic.Topic, group: eventGroup, handler: eventHandler},
		{name: "vehicle", topic: cfg.KafkaVehicleTopic.Topic, group: vehicleGroup, handler: vehicleHandler},
	}}, nil
}

// Start 启动所有消费者，ctx 结束后关闭
func (m *ConsumerManager) Start(ctx context.Context) error {
	for _, c := range m.consumers {
		go func(c *consumer) {
			log.Info("consumer started", "name", c.name, "topic", c.topic)
			for {
				if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					log.Error("Error from consumer", "name", c.name, "err", err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(c)
		go func(c *consumer) {
			for err := range c.group.Errors() {
				log.Error("consumer group error", "name", c.name, "err", err)
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("Failed to close consumer", "name", c.name, "err", err)
		}
	}
	return nil
}
