package repository

import (
	"path/filepath"
	"testing"
	"time"

	"Motorway/internal/model"
	"Motorway/internal/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	buyer, seller, stranger *model.User
	vehicle                 *model.Vehicle
	conv                    *model.Conversation
}

func seed(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		buyer:    &model.User{ID: 1, PublicID: uuid.NewString(), Nickname: "buyer"},
		seller:   &model.User{ID: 2, PublicID: uuid.NewString(), Nickname: "seller"},
		stranger: &model.User{ID: 3, PublicID: uuid.NewString(), Nickname: "stranger"},
	}
	require.NoError(t, db.Create([]*model.User{f.buyer, f.seller, f.stranger}).Error)

	f.vehicle = &model.Vehicle{
		ID: 10, PublicID: uuid.NewString(), SellerID: f.seller.ID,
		Make: "Toyota", Model: "Corolla", Year: 2019, Title: "Corolla 1.8",
		Price: 150000, Status: model.VehicleStatusActive,
	}
	require.NoError(t, db.Create(f.vehicle).Error)

	f.conv = &model.Conversation{
		PublicID: uuid.NewString(), BuyerID: f.buyer.ID, SellerID: f.seller.ID,
		VehicleID: f.vehicle.ID, LastMessageAt: time.Now(),
	}
	require.NoError(t, db.Omit("Buyer", "Seller", "Vehicle").Create(f.conv).Error)
	return f
}

func newOffer(f *fixture, from, to *model.User, amount int64) *model.Offer {
	return &model.Offer{
		PublicID:       uuid.NewString(),
		ConversationID: f.conv.ID,
		SenderID:       from.ID,
		RecipientID:    to.ID,
		VehicleID:      f.vehicle.ID,
		Amount:         amount,
	}
}

func newEvent(kind string, actor uint64) *model.NegotiationEvent {
	return &model.NegotiationEvent{EventID: uuid.NewString(), Kind: kind, ActorID: actor}
}
