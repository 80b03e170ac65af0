package model

import "time"

const (
	VehicleStatusActive   = "ACTIVE"
	VehicleStatusReserved = "RESERVED"
	VehicleStatusSold     = "SOLD"
)

// Vehicle 车辆挂牌
type Vehicle struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"type:varchar(36);uniqueIndex:idx_vehicle_public_id;not null" json:"publicId"`
	SellerID  uint64    `gorm:"not null;index:idx_seller_id" json:"sellerId"`
	Make      string    `gorm:"type:varchar(64);not null" json:"make"`
	Model     string    `gorm:"type:varchar(64);not null" json:"model"`
	Year      int       `gorm:"not null" json:"year"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Price     int64     `gorm:"not null" json:"price"`
	Status    string    `gorm:"type:varchar(16);not null;default:ACTIVE;index" json:"status"`
	CoverKey  string    `gorm:"type:varchar(512)" json:"coverKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
