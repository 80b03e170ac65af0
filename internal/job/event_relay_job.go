package job

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/consts"
	"Motorway/internal/pkg/logger"
	"Motorway/internal/repository"
	"Motorway/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// EventPublisher 事件投递
type EventPublisher interface {
	PublishEvents(events []*model.NegotiationEvent) error
}

// partialFailure 投递方只有部分事件失败时返回的错误
type partialFailure interface {
	FailedEventIDs() []uint64
}

// EventRelayJob 把发件箱中未投递的议价事件转发到 Kafka
type EventRelayJob struct {
	eventRepo   repository.EventRepo
	publisher   EventPublisher
	locker      service.Locker
	batch       int
	maxAttempts int
	lockTTL     time.Duration
}

func NewEventRelayJob(eventRepo repository.EventRepo, publisher EventPublisher, locker service.Locker, batch, maxAttempts int) *EventRelayJob {
	if batch <= 0 {
		batch = 100
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &EventRelayJob{
		eventRepo:   eventRepo,
		publisher:   publisher,
		locker:      locker,
		batch:       batch,
		maxAttempts: maxAttempts,
		lockTTL:     30 * time.Second,
	}
}

func (s *EventRelayJob) Run() {
	traceID := "job-relay-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	// 多实例部署时只有一个实例转发
	if s.locker != nil {
		token := uuid.NewString()
		ok, err := s.locker.TryLock(ctx, consts.EventRelayLock, token, s.lockTTL, 0)
		if err != nil {
			log.ErrorContext(ctx, "acquire relay lock error", "err", err)
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := s.locker.UnLock(ctx, consts.EventRelayLock, token); err != nil {
				log.WarnContext(ctx, "release relay lock error", "err", err)
			}
		}()
	}

	if _, err := s.RelayOnce(ctx); err != nil {
		log.ErrorContext(ctx, "relay negotiation events error", "err", err)
	}
}

// RelayOnce 转发一批事件，返回成功投递的条数。
// 部分失败时其余事件照常标记，失败事件记一次失败，达到上限后搁置
func (s *EventRelayJob) RelayOnce(ctx context.Context) (int, error) {
	events, err := s.eventRepo.ListUnpublished(ctx, s.batch, s.maxAttempts)
	if err != nil || len(events) == 0 {
		return 0, err
	}

	failed := map[uint64]bool{}
	if err = s.publisher.PublishEvents(events); err != nil {
		var pf partialFailure
		if !errors.As(err, &pf) {
			// 整批失败多为 Kafka 不可用，不计入单个事件的失败次数
			return 0, err
		}
		for _, id := range pf.FailedEventIDs() {
			failed[id] = true
		}
		log.WarnContext(ctx, "some negotiation events not delivered", "failed", len(failed), "err", err)
	}

	var delivered, failedIDs []uint64
	for _, ev := range events {
		if !failed[ev.ID] {
			delivered = append(delivered, ev.ID)
			continue
		}
		failedIDs = append(failedIDs, ev.ID)
		if ev.Attempts+1 >= s.maxAttempts {
			log.ErrorContext(ctx, "negotiation event parked after repeated failures",
				"event_id", ev.EventID, "id", ev.ID, "attempts", ev.Attempts+1)
		}
	}
	if err = s.eventRepo.IncrAttempts(ctx, failedIDs); err != nil {
		return 0, err
	}

	// 标记失败会导致下一轮重复投递，消费端按 event_id 去重
	if err = s.eventRepo.MarkPublished(ctx, delivered, time.Now()); err != nil {
		return 0, err
	}
	log.InfoContext(ctx, "negotiation events relayed", "count", len(delivered))
	return len(delivered), nil
}
