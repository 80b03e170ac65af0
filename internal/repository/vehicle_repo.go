package repository

import (
	"Motorway/internal/model"
	"context"

	"gorm.io/gorm"
)

type VehicleRepo interface {
	GetVehicleByID(ctx context.Context, id uint64) (*model.Vehicle, error)
	GetVehicleByPublicID(ctx context.Context, publicID string) (*model.Vehicle, error)
}

type vehicleRepoImpl struct {
	db *gorm.DB
}

func NewVehicleRepo(db *gorm.DB) VehicleRepo {
	return &vehicleRepoImpl{db: db}
}

func (s *vehicleRepoImpl) GetVehicleByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *vehicleRepoImpl) GetVehicleByPublicID(ctx context.Context, publicID string) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
