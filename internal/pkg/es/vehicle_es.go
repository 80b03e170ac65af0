package es

import (
	"Motorway/internal/model"
	"time"
)

// VehicleES 写入 ES 的车辆文档
type VehicleES struct {
	ID        uint64    `json:"id"`
	PublicID  string    `json:"public_id"`
	SellerID  uint64    `json:"seller_id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Status    string    `json:"status"`
	CoverKey  string    `json:"cover_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sort []interface{} `json:"-"`
}

func FromVehicle(v *model.Vehicle) *VehicleES {
	return &VehicleES{
		ID:        v.ID,
		PublicID:  v.PublicID,
		SellerID:  v.SellerID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Title:     v.Title,
		Price:     v.Price,
		Status:    v.Status,
		CoverKey:  v.CoverKey,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// VehicleQuery 已归一化的搜索条件，零值表示不限
type VehicleQuery struct {
	Keyword  string
	Make     string
	PriceMin *int64
	PriceMax *int64
	YearFrom *int
	YearTo   *int
	After    []interface{}
	Size     int
}
