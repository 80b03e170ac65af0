package service

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"Motorway/internal/api/config"
	"Motorway/internal/model"
	"Motorway/internal/pkg/database"
	"Motorway/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (c *memCache) GetValue(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) SetWithExpiration(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return nil
}

func (c *memCache) DeleteKey(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memCache) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memCache) SetIfVersion(_ context.Context, key string, value interface{}, _ time.Duration, versionKey, version string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[versionKey] != version {
		return false, nil
	}
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return true, nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

type memLocker struct {
	mu    sync.Mutex
	held  map[string]interface{}
	locks int
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]interface{}{}}
}

func (l *memLocker) TryLock(_ context.Context, key string, value interface{}, _ time.Duration, _ int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	l.locks++
	return true, nil
}

func (l *memLocker) UnLock(_ context.Context, key string, value interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

type stubSigner struct{}

func (stubSigner) SignURL(_ context.Context, key string) string {
	return "signed://" + key
}

type env struct {
	db     *gorm.DB
	cache  *memCache
	locker *memLocker

	convSvc ConversationService
	negSvc  NegotiationService

	buyer, seller, stranger *model.User
	vehicle                 *model.Vehicle
	conv                    *model.Conversation
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	e := &env{
		db:       db,
		cache:    newMemCache(),
		locker:   newMemLocker(),
		buyer:    &model.User{ID: 1, PublicID: uuid.NewString(), Nickname: "buyer"},
		seller:   &model.User{ID: 2, PublicID: uuid.NewString(), Nickname: "seller", AvatarKey: "avatars/2.png"},
		stranger: &model.User{ID: 3, PublicID: uuid.NewString(), Nickname: "stranger"},
	}
	require.NoError(t, db.Create([]*model.User{e.buyer, e.seller, e.stranger}).Error)

	e.vehicle = &model.Vehicle{
		ID: 10, PublicID: uuid.NewString(), SellerID: e.seller.ID,
		Make: "Toyota", Model: "Corolla", Year: 2019, Title: "Corolla 1.8",
		Price: 150000, Status: model.VehicleStatusActive, CoverKey: "covers/10.jpg",
	}
	require.NoError(t, db.Create(e.vehicle).Error)

	e.conv = &model.Conversation{
		PublicID: uuid.NewString(), BuyerID: e.buyer.ID, SellerID: e.seller.ID,
		VehicleID: e.vehicle.ID, LastMessageAt: time.Now(),
	}
	require.NoError(t, db.Omit("Buyer", "Seller", "Vehicle").Create(e.conv).Error)

	cfg := config.NegotiationConfig{SnapshotTTL: 600, ListTTL: 300, LockTTL: 10}
	convRepo := repository.NewConversationRepo(db)
	msgRepo := repository.NewMessageRepo(db)
	offerRepo := repository.NewOfferRepo(db)
	vehicleRepo := repository.NewVehicleRepo(db)

	e.convSvc = NewConversationService(convRepo, msgRepo, offerRepo, vehicleRepo, e.cache, stubSigner{}, cfg)
	e.negSvc = NewNegotiationService(convRepo, msgRepo, offerRepo, e.cache, e.locker, cfg)
	return e
}

func (e *env) convRef() string {
	return e.conv.PublicID
}

func (e *env) countOffers(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Offer{}).Count(&n).Error)
	return n
}
