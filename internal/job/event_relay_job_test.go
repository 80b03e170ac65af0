package job

import (
	"Motorway/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	events []*model.NegotiationEvent
}

func (f *fakeEventRepo) ListUnpublished(_ context.Context, limit, maxAttempts int) ([]*model.NegotiationEvent, error) {
	var out []*model.NegotiationEvent
	for _, ev := range f.events {
		if ev.PublishedAt != nil || (maxAttempts > 0 && ev.Attempts >= maxAttempts) {
			continue
		}
		if len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) MarkPublished(_ context.Context, ids []uint64, at time.Time) error {
	for _, ev := range f.events {
		for _, id := range ids {
			if ev.ID == id {
				ev.PublishedAt = &at
			}
		}
	}
	return nil
}

func (f *fakeEventRepo) IncrAttempts(_ context.Context, ids []uint64) error {
	for _, ev := range f.events {
		for _, id := range ids {
			if ev.ID == id {
				ev.Attempts++
			}
		}
	}
	return nil
}

type undelivered []uint64

func (u undelivered) Error() string            { return "some events not delivered" }
func (u undelivered) FailedEventIDs() []uint64 { return u }

type fakePublisher struct {
	batches [][]*model.NegotiationEvent
	err     error
	reject  map[uint64]bool // 总是投递失败的事件
}

func (f *fakePublisher) PublishEvents(events []*model.NegotiationEvent) error {
	if f.err != nil {
		return f.err
	}
	var failed undelivered
	for _, ev := range events {
		if f.reject[ev.ID] {
			failed = append(failed, ev.ID)
		}
	}
	f.batches = append(f.batches, events)
	if len(failed) > 0 {
		return failed
	}
	return nil
}

type fakeLocker struct {
	held  bool
	taken int
}

func (f *fakeLocker) TryLock(context.Context, string, interface{}, time.Duration, int) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	f.taken++
	return true, nil
}

func (f *fakeLocker) UnLock(context.Context, string, interface{}) error {
	f.held = false
	return nil
}

func (f *fakeEventRepo) add(id uint64) {
	f.events = append(f.events, &model.NegotiationEvent{ID: id, EventID: "ev", ConversationID: 1})
}

func seedEvents(n int) *fakeEventRepo {
	repo := &fakeEventRepo{}
	for i := 1; i <= n; i++ {
		repo.add(uint64(i))
	}
	return repo
}

func TestRelayOnceBatches(t *testing.T) {
	repo := seedEvents(5)
	pub := &fakePublisher{}
	j := NewEventRelayJob(repo, pub, nil, 3, 5)

	n, err := j.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = j.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = j.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Len(t, pub.batches, 2)
	for _, ev := range repo.events {
		assert.NotNil(t, ev.PublishedAt)
		assert.Zero(t, ev.Attempts)
	}
}

func TestRelayOncePublishFailureLeavesEventsPending(t *testing.T) {
	repo := seedEvents(2)
	j := NewEventRelayJob(repo, &fakePublisher{err: errors.New("kafka down")}, nil, 10, 5)

	for i := 0; i < 10; i++ {
		_, err := j.RelayOnce(context.Background())
		require.Error(t, err)
	}
	// Kafka 整体不可用不计入单个事件的失败次数，恢复后照常投递
	for _, ev := range repo.events {
		assert.Nil(t, ev.PublishedAt)
		assert.Zero(t, ev.Attempts)
	}
}

func TestRelayOnceParksRepeatedlyFailingEvent(t *testing.T) {
	ctx := context.Background()
	repo := seedEvents(3)
	pub := &fakePublisher{reject: map[uint64]bool{1: true}}
	j := NewEventRelayJob(repo, pub, nil, 10, 3)

	n, err := j.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Nil(t, repo.events[0].PublishedAt)
	assert.Equal(t, 1, repo.events[0].Attempts)
	assert.NotNil(t, repo.events[1].PublishedAt)
	assert.NotNil(t, repo.events[2].PublishedAt)

	for i := 0; i < 2; i++ {
		n, err = j.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.Equal(t, 3, repo.events[0].Attempts)

	// 达到上限后不再取出，后续事件不受阻塞
	repo.add(4)
	n, err = j.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	last := pub.batches[len(pub.batches)-1]
	require.Len(t, last, 1)
	assert.Equal(t, uint64(4), last[0].ID)
	assert.Nil(t, repo.events[0].PublishedAt)
}

func TestRunSkipsWhenAnotherInstanceHoldsLock(t *testing.T) {
	repo := seedEvents(1)
	pub := &fakePublisher{}
	locker := &fakeLocker{held: true}
	j := NewEventRelayJob(repo, pub, locker, 10, 5)

	j.Run()
	assert.Empty(t, pub.batches)

	locker.held = false
	j.Run()
	assert.Len(t, pub.batches, 1)
	assert.False(t, locker.held)
	assert.Equal(t, 1, locker.taken)
}
