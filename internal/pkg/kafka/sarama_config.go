package kafka

import (
	"Motorway/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 统一初始化消费者使用的 sarama.Config
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg)

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest

	c.Consumer.Offsets.AutoCommit.Enable = false

	// 未配置时沿用 sarama 默认值
	if v := kafkaCfg.Consumer.SessionTimeout; v > 0 {
		c.Consumer.Group.Session.Timeout = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.HeartbeatInterval; v > 0 {
		c.Consumer.Group.Heartbeat.Interval = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.RebalanceTimeout; v > 0 {
		c.Consumer.Group.Rebalance.Timeout = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.MaxProcessingTime; v > 0 {
		c.Consumer.MaxProcessingTime = time.Duration(v) * time.Second
	}

	return c
}

// newProducerConfig 同步生产者，等待全部副本确认
func newProducerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	applySasl(c, kafkaCfg)

	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Idempotent = true
	c.Net.MaxOpenRequests = 1
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.Partitioner = sarama.NewHashPartitioner
	return c
}

func applySasl(c *sarama.Config, kafkaCfg config.KafkaConfig) {
	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}
}
