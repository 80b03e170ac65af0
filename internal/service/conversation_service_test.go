package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Motorway/internal/api/config"
	"Motorway/internal/api/dto"
	"Motorway/internal/model"
	"Motorway/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConversationAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.convSvc.LoadConversation(ctx, e.buyer.ID, "999")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = e.convSvc.LoadConversation(ctx, e.buyer.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = e.convSvc.LoadConversation(ctx, e.buyer.ID, "  ")
	assert.ErrorIs(t, err, ErrParamInvalid)

	_, err = e.convSvc.LoadConversation(ctx, e.stranger.ID, e.convRef())
	assert.ErrorIs(t, err, ErrNotParticipant)

	// 快照已被缓存后，非参与方依然不可读
	_, err = e.convSvc.LoadConversation(ctx, e.buyer.ID, fmt.Sprint(e.conv.ID))
	require.NoError(t, err)
	_, err = e.convSvc.LoadConversation(ctx, e.stranger.ID, fmt.Sprint(e.conv.ID))
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestLoadConversationViewerFlags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.negSvc.SendMessage(ctx, e.buyer.ID, e.convRef(), &dto.SendMessageReq{Content: "is it available?"})
	require.NoError(t, err)
	e.createOffer(t, 100000)

	seller, err := e.convSvc.LoadConversation(ctx, e.seller.ID, e.convRef())
	require.NoError(t, err)
	assert.Equal(t, "seller", seller.Role)
	assert.Equal(t, "buyer", seller.Buyer.Nickname)
	assert.Equal(t, "signed://avatars/2.png", seller.Seller.AvatarURL)
	assert.Equal(t, "signed://covers/10.jpg", seller.Vehicle.CoverURL)
	require.Len(t, seller.Feed, 2)
	assert.Equal(t, "message", seller.Feed[0].Kind)
	assert.Equal(t, "offer", seller.Feed[1].Kind)
	assert.False(t, seller.Feed[0].Message.IsMine)
	assert.True(t, seller.Feed[1].Offer.CanRespond)
	assert.False(t, seller.Concluded)

	buyer, err := e.convSvc.LoadConversation(ctx, e.buyer.ID, e.convRef())
	require.NoError(t, err)
	assert.Equal(t, "buyer", buyer.Role)
	assert.True(t, buyer.Feed[0].Message.IsMine)
	assert.False(t, buyer.Feed[1].Offer.CanRespond)
}

func TestSoldVehicleConcludesNegotiation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createOffer(t, 100000)
	require.NoError(t, e.db.Model(e.vehicle).Update("status", model.VehicleStatusSold).Error)
	require.NoError(t, e.cache.DeleteKey(ctx, SnapshotKey(e.conv.ID)))

	snap, err := e.convSvc.LoadConversation(ctx, e.seller.ID, e.convRef())
	require.NoError(t, err)
	assert.True(t, snap.Concluded)
	assert.False(t, snap.Offers[0].CanRespond)

	_, err = e.negSvc.RespondToOffer(ctx, e.seller.ID, snap.Offers[0].PublicID, "ACCEPTED")
	assert.ErrorIs(t, err, ErrNegotiationConcluded)
}

func TestSnapshotServedFromCacheUntilInvalidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.convSvc.LoadConversation(ctx, e.buyer.ID, e.convRef())
	require.NoError(t, err)
	assert.Empty(t, first.Messages)

	// 绕过服务直接写库，缓存未失效时读不到
	require.NoError(t, e.db.Create(&model.Message{
		PublicID: uuid.NewString(), ConversationID: e.conv.ID, SenderID: e.seller.ID,
		Content: "direct", CreatedAt: time.Now(),
	}).Error)
	cached, err := e.convSvc.LoadConversation(ctx, e.buyer.ID, e.convRef())
	require.NoError(t, err)
	assert.Empty(t, cached.Messages)

	_, err = e.negSvc.SendMessage(ctx, e.buyer.ID, e.convRef(), &dto.SendMessageReq{Content: "via service"})
	require.NoError(t, err)

	fresh, err := e.convSvc.LoadConversation(ctx, e.buyer.ID, e.convRef())
	require.NoError(t, err)
	assert.Len(t, fresh.Messages, 2)
}

// fillHookCache 在回填写入前执行一次 hook，模拟读库与回填之间插入的修改
type fillHookCache struct {
	*memCache
	hooks map[string]func()
}

func (c *fillHookCache) SetIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey, version string) (bool, error) {
	if hook, ok := c.hooks[key]; ok {
		delete(c.hooks, key)
		hook()
	}
	return c.memCache.SetIfVersion(ctx, key, value, expiration, versionKey, version)
}

func TestSnapshotFillSkippedWhenMutatedDuringLoad(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o1 := e.createOffer(t, 100000)

	hooked := &fillHookCache{memCache: e.cache, hooks: map[string]func(){
		SnapshotKey(e.conv.ID): func() {
			_, err := e.negSvc.RespondToOffer(ctx, e.seller.ID, o1.PublicID, "REJECTED")
			require.NoError(t, err)
		},
	}}
	cfg := config.NegotiationConfig{SnapshotTTL: 600, ListTTL: 300, LockTTL: 10}
	racing := NewConversationService(repository.NewConversationRepo(e.db), repository.NewMessageRepo(e.db),
		repository.NewOfferRepo(e.db), repository.NewVehicleRepo(e.db), hooked, stubSigner{}, cfg)

	stale, err := racing.LoadConversation(ctx, e.buyer.ID, e.convRef())
	require.NoError(t, err)
	assert.Equal(t, "PENDING", stale.Offers[0].Status)
	assert.False(t, e.cache.has(SnapshotKey(e.conv.ID)))

	fresh, err := e.convSvc.LoadConversation(ctx, e.seller.ID, e.convRef())
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", fresh.Offers[0].Status)
	assert.False(t, fresh.Offers[0].CanRespond)
	assert.Nil(t, fresh.PendingOffer)
	assert.True(t, e.cache.has(SnapshotKey(e.conv.ID)))
}

func TestListFillSkippedWhenMutatedDuringLoad(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	hooked := &fillHookCache{memCache: e.cache, hooks: map[string]func(){
		ListKey(e.seller.ID): func() {
			_, err := e.negSvc.SendMessage(ctx, e.buyer.ID, e.convRef(), &dto.SendMessageReq{Content: "still there?"})
			require.NoError(t, err)
		},
	}}
	cfg := config.NegotiationConfig{SnapshotTTL: 600, ListTTL: 300, LockTTL: 10}
	racing := NewConversationService(repository.NewConversationRepo(e.db), repository.NewMessageRepo(e.db),
		repository.NewOfferRepo(e.db), repository.NewVehicleRepo(e.db), hooked, stubSigner{}, cfg)

	items, err := racing.ListConversations(ctx, e.seller.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].LastMessage)
	assert.False(t, e.cache.has(ListKey(e.seller.ID)))

	items, err = e.convSvc.ListConversations(ctx, e.seller.ID)
	require.NoError(t, err)
	require.NotNil(t, items[0].LastMessage)
	assert.Equal(t, "still there?", items[0].LastMessage.Content)
	assert.Equal(t, int64(1), items[0].UnreadCount)
}

func TestStartConversation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	other := &model.Vehicle{ID: 11, PublicID: uuid.NewString(), SellerID: e.seller.ID, Title: "Civic", Status: model.VehicleStatusActive}
	require.NoError(t, e.db.Create(other).Error)

	snap, err := e.convSvc.StartConversation(ctx, e.stranger.ID, &dto.StartConversationReq{VehicleID: other.PublicID, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, e.stranger.ID, snap.Buyer.ID)
	assert.Equal(t, e.seller.ID, snap.Seller.ID)
	require.Len(t, snap.Messages, 1)

	again, err := e.convSvc.StartConversation(ctx, e.stranger.ID, &dto.StartConversationReq{VehicleID: fmt.Sprint(other.ID), Content: "hello?"})
	require.NoError(t, err)
	assert.Equal(t, snap.ID, again.ID)
	assert.Len(t, again.Messages, 2)

	_, err = e.convSvc.StartConversation(ctx, e.seller.ID, &dto.StartConversationReq{VehicleID: other.PublicID, Content: "hi"})
	assert.ErrorIs(t, err, ErrSelfConversation)

	_, err = e.convSvc.StartConversation(ctx, e.stranger.ID, &dto.StartConversationReq{VehicleID: "404", Content: "hi"})
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = e.convSvc.StartConversation(ctx, e.stranger.ID, &dto.StartConversationReq{VehicleID: other.PublicID, Content: ""})
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestStartConversationOnSoldVehicle(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Model(e.vehicle).Update("status", model.VehicleStatusSold).Error)

	_, err := e.convSvc.StartConversation(context.Background(), e.stranger.ID,
		&dto.StartConversationReq{VehicleID: e.vehicle.PublicID, Content: "hi"})
	assert.ErrorIs(t, err, ErrNegotiationConcluded)
}

func TestListMarkReadAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, c := range []string{"one", "two"} {
		_, err := e.negSvc.SendMessage(ctx, e.seller.ID, e.convRef(), &dto.SendMessageReq{Content: c})
		require.NoError(t, err)
	}

	list, err := e.convSvc.ListConversations(ctx, e.buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].UnreadCount)
	assert.Equal(t, "seller", list[0].Counterpart.Nickname)
	assert.Equal(t, "two", list[0].LastMessage.Content)
	assert.Equal(t, "buyer", list[0].Role)

	require.NoError(t, e.convSvc.MarkRead(ctx, e.buyer.ID, e.convRef()))
	list, err = e.convSvc.ListConversations(ctx, e.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, list[0].UnreadCount)

	assert.ErrorIs(t, e.convSvc.MarkRead(ctx, e.stranger.ID, e.convRef()), ErrNotParticipant)

	require.NoError(t, e.convSvc.RemoveConversation(ctx, e.buyer.ID, e.convRef()))
	list, err = e.convSvc.ListConversations(ctx, e.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = e.convSvc.ListConversations(ctx, e.seller.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, e.convSvc.RemoveConversation(ctx, e.stranger.ID, e.convRef()), ErrNotParticipant)
}
