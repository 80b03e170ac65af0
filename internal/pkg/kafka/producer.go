package kafka

import (
	"Motorway/internal/api/config"
	"Motorway/internal/model"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EventProducer 把发件箱事件投递到 Kafka
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(cfg *config.Config) (*EventProducer, error) {
	p, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, errors.Wrap(err, "create sync producer")
	}
	return NewEventProducerWith(p, cfg.KafkaEventTopic.Topic), nil
}

// NewEventProducerWith 使用已有的生产者，测试中传入 mocks.SyncProducer
func NewEventProducerWith(p sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: p, topic: topic}
}

// PublishError 部分事件未投递成功，Failed 为这些事件的主键
type PublishError struct {
	Failed []uint64
	Total  int
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%d of %d negotiation events not delivered: %v", len(e.Failed), e.Total, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func (e *PublishError) FailedEventIDs() []uint64 { return e.Failed }

// PublishEvents 以会话 ID 作为分区键，保证同一会话内有序。
// 整批失败返回普通错误；只有部分事件失败时返回 *PublishError
func (p *EventProducer) PublishEvents(events []*model.NegotiationEvent) error {
	if len(events) == 0 {
		return nil
	}
	var (
		failed   []uint64
		firstErr error
	)
	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			failed = append(failed, ev.ID)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "marshal event %s", ev.EventID)
			}
			continue
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(ev.ConversationID, 10)),
			Value: sarama.ByteEncoder(body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event_id"), Value: []byte(ev.EventID)},
				{Key: []byte("kind"), Value: []byte(ev.Kind)},
			},
			Metadata: ev.ID,
		})
	}

	if len(msgs) > 0 {
		if err := p.producer.SendMessages(msgs); err != nil {
			var perrs sarama.ProducerErrors
			if !errors.As(err, &perrs) || len(perrs) >= len(msgs) {
				return errors.Wrap(err, "send negotiation events")
			}
			for _, pe := range perrs {
				if pe.Msg == nil {
					continue
				}
				if id, ok := pe.Msg.Metadata.(uint64); ok {
					failed = append(failed, id)
				}
			}
			if firstErr == nil {
				firstErr = errors.Wrap(err, "send negotiation events")
			}
		}
	}

	if len(failed) > 0 {
		return &PublishError{Failed: failed, Total: len(events), Err: firstErr}
	}
	return nil
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}
