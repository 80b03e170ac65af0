package dto

// VehicleSummaryDTO 车辆摘要
type VehicleSummaryDTO struct {
	ID       uint64 `json:"id"`
	PublicID string `json:"publicId"`
	SellerID uint64 `json:"sellerId"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Status   string `json:"status"`
	CoverURL string `json:"coverUrl"`
}

// VehicleSearchReq 车辆搜索，区间字段为空表示不限
type VehicleSearchReq struct {
	Keyword  string `form:"keyword" validate:"max=100"`
	Make     string `form:"make" validate:"max=64"`
	PriceMin *int64 `form:"priceMin" validate:"omitempty,gte=0"`
	PriceMax *int64 `form:"priceMax" validate:"omitempty,gte=0"`
	YearFrom *int   `form:"yearFrom" validate:"omitempty,gte=1900"`
	YearTo   *int   `form:"yearTo" validate:"omitempty,gte=1900"`
	Cursor   string `form:"cursor"`
	Size     int    `form:"size" validate:"omitempty,min=1,max=50"`
}

// VehicleSearchResp 搜索结果，NextCursor 为空表示没有更多
type VehicleSearchResp struct {
	List       []*VehicleSummaryDTO `json:"list"`
	NextCursor string               `json:"nextCursor"`
}
