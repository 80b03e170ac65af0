package kafka

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/es"
	"Motorway/internal/pkg/mongo"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	channel string
	payload string
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload interface{}) error {
	f.sent = append(f.sent, published{channel: channel, payload: payload.(string)})
	return f.err
}

type fakeAuditRepo struct {
	records []*mongo.NegotiationAudit
	err     error
}

func (f *fakeAuditRepo) Append(_ context.Context, rec *mongo.NegotiationAudit) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAuditRepo) ListByConversation(_ context.Context, convID uint64, _ int64) ([]*mongo.NegotiationAudit, error) {
	var out []*mongo.NegotiationAudit
	for _, r := range f.records {
		if r.ConversationID == convID {
			out = append(out, r)
		}
	}
	return out, nil
}

func eventMessage(t *testing.T, ev *model.NegotiationEvent) *sarama.ConsumerMessage {
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "negotiation-events", Value: body}
}

func TestNegotiationEventHandlerPushesToBothParticipants(t *testing.T) {
	pub := &fakePublisher{}
	audit := &fakeAuditRepo{}
	h := NewNegotiationEventHandler(pub, audit)

	payload, _ := json.Marshal(&model.NegotiationEventPayload{BuyerID: 1, SellerID: 2, Amount: 9500, Status: "PENDING"})
	err := h.Handle(context.Background(), eventMessage(t, &model.NegotiationEvent{
		EventID:        "ev-1",
		Kind:           model.EventOfferCreated,
		ConversationID: 5,
		OfferID:        9,
		ActorID:        1,
		Payload:        string(payload),
		CreatedAt:      time.Now(),
	}))
	require.NoError(t, err)

	require.Len(t, audit.records, 1)
	assert.Equal(t, "ev-1", audit.records[0].EventID)
	assert.Equal(t, int64(9500), audit.records[0].Amount)

	require.Len(t, pub.sent, 2)
	assert.Equal(t, "im:user:1", pub.sent[0].channel)
	assert.Equal(t, "im:user:2", pub.sent[1].channel)

	var push PushMessage
	require.NoError(t, json.Unmarshal([]byte(pub.sent[0].payload), &push))
	assert.Equal(t, PushTypeNegotiation, push.Type)
	assert.Equal(t, model.EventOfferCreated, push.Event)
	assert.Equal(t, uint64(5), push.ConversationID)
	assert.Equal(t, uint64(9), push.OfferID)
}

func TestNegotiationEventHandlerSkipsGarbage(t *testing.T) {
	h := NewNegotiationEventHandler(&fakePublisher{}, &fakeAuditRepo{})
	err := h.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.ErrorIs(t, err, ErrSkipMessage)
}

func TestNegotiationEventHandlerAuditFailureRetries(t *testing.T) {
	pub := &fakePublisher{}
	h := NewNegotiationEventHandler(pub, &fakeAuditRepo{err: errors.New("mongo down")})
	err := h.Handle(context.Background(), eventMessage(t, &model.NegotiationEvent{EventID: "ev-2", ConversationID: 5}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSkipMessage)
	assert.Empty(t, pub.sent)
}

func TestNegotiationEventHandlerPushFailureIsNotRetried(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	audit := &fakeAuditRepo{}
	h := NewNegotiationEventHandler(pub, audit)
	payload, _ := json.Marshal(&model.NegotiationEventPayload{BuyerID: 1, SellerID: 2})
	err := h.Handle(context.Background(), eventMessage(t, &model.NegotiationEvent{
		EventID: "ev-3", ConversationID: 5, Payload: string(payload),
	}))
	require.NoError(t, err)
	assert.Len(t, audit.records, 1)
}

type fakeVehicleDB struct {
	vehicles map[uint64]*model.Vehicle
}

func (f *fakeVehicleDB) GetVehicleByID(_ context.Context, id uint64) (*model.Vehicle, error) {
	if v, ok := f.vehicles[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVehicleDB) GetVehicleByPublicID(context.Context, string) (*model.Vehicle, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeVehicleIndex struct {
	indexed  map[uint64]int64
	deleted  []uint64
	indexErr error
}

func (f *fakeVehicleIndex) SearchVehicles(context.Context, *es.VehicleQuery) ([]*es.VehicleES, error) {
	return nil, nil
}

func (f *fakeVehicleIndex) IndexVehicle(_ context.Context, v *es.VehicleES, version int64) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	if f.indexed == nil {
		f.indexed = map[uint64]int64{}
	}
	f.indexed[v.ID] = version
	return nil
}

func (f *fakeVehicleIndex) DeleteVehicle(_ context.Context, id uint64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func canalMessage(t *testing.T, typ string, ids ...string) *sarama.ConsumerMessage {
	rows := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]interface{}{"id": id})
	}
	body, err := json.Marshal(&CanalMessage{Table: "vehicles", Type: typ, TS: 1700000000000, Data: rows})
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: body}
}

func TestVehicleHandlerSync(t *testing.T) {
	db := &fakeVehicleDB{vehicles: map[uint64]*model.Vehicle{
		10: {ID: 10, Title: "Civic", Status: model.VehicleStatusActive},
		11: {ID: 11, Title: "Golf", Status: model.VehicleStatusSold},
	}}
	idx := &fakeVehicleIndex{}
	h := NewVehicleHandler(db, idx)

	require.NoError(t, h.Handle(context.Background(), canalMessage(t, UPDATE, "10", "11", "12")))
	assert.Equal(t, map[uint64]int64{10: 1700000000000}, idx.indexed)
	// 已售和已删除的车辆移出索引
	assert.ElementsMatch(t, []uint64{11, 12}, idx.deleted)

	require.NoError(t, h.Handle(context.Background(), canalMessage(t, DELETE, "10")))
	assert.Contains(t, idx.deleted, uint64(10))
}

func TestVehicleHandlerIgnoresOtherTables(t *testing.T) {
	h := NewVehicleHandler(&fakeVehicleDB{}, &fakeVehicleIndex{})
	body, _ := json.Marshal(&CanalMessage{Table: "users", Type: INSERT, Data: []map[string]interface{}{{"id": "1"}}})
	err := h.Handle(context.Background(), &sarama.ConsumerMessage{Value: body})
	assert.ErrorIs(t, err, ErrSkipMessage)
}

func TestVehicleHandlerIndexFailureIsRetryable(t *testing.T) {
	db := &fakeVehicleDB{vehicles: map[uint64]*model.Vehicle{10: {ID: 10, Status: model.VehicleStatusActive}}}
	h := NewVehicleHandler(db, &fakeVehicleIndex{indexErr: errors.New("es down")})
	err := h.Handle(context.Background(), canalMessage(t, INSERT, "10"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSkipMessage)
}

func TestStrToUint64(t *testing.T) {
	assert.Equal(t, uint64(42), StrToUint64("42"))
	assert.Equal(t, uint64(7), StrToUint64(float64(7)))
	assert.Equal(t, uint64(0), StrToUint64(nil))
	assert.Equal(t, uint64(0), StrToUint64("abc"))
}
