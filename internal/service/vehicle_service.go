package service

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/model"
	"Motorway/internal/pkg/es"
	"Motorway/internal/pkg/util"
	"context"
	"strings"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 50
)

type VehicleService interface {
	SearchVehicles(ctx context.Context, req *dto.VehicleSearchReq) (*dto.VehicleSearchResp, error)
}

type vehicleServiceImpl struct {
	esRepo es.VehicleRepo
	signer MediaSigner
}

func NewVehicleService(esRepo es.VehicleRepo, signer MediaSigner) VehicleService {
	return &vehicleServiceImpl{esRepo: esRepo, signer: signer}
}

func (s *vehicleServiceImpl) SearchVehicles(ctx context.Context, req *dto.VehicleSearchReq) (*dto.VehicleSearchResp, error) {
	q, err := NormalizeVehicleFilter(req)
	if err != nil {
		return nil, err
	}

	docs, err := s.esRepo.SearchVehicles(ctx, q)
	if err != nil {
		return nil, err
	}

	resp := &dto.VehicleSearchResp{List: make([]*dto.VehicleSummaryDTO, 0, len(docs))}
	for _, d := range docs {
		v := toVehicleDTO(ctx, s.signer, &model.Vehicle{
			ID:       d.ID,
			PublicID: d.PublicID,
			SellerID: d.SellerID,
			Make:     d.Make,
			Model:    d.Model,
			Year:     d.Year,
			Title:    d.Title,
			Price:    d.Price,
			Status:   d.Status,
			CoverKey: d.CoverKey,
		})
		resp.List = append(resp.List, &v)
	}
	if len(docs) == q.Size {
		resp.NextCursor = util.EncodeCursor(docs[len(docs)-1].Sort)
	}
	return resp, nil
}

// NormalizeVehicleFilter 去除空白、补默认页大小，区间上下限颠倒视为非法
func NormalizeVehicleFilter(req *dto.VehicleSearchReq) (*es.VehicleQuery, error) {
	q := &es.VehicleQuery{
		Keyword:  strings.TrimSpace(req.Keyword),
		Make:     strings.TrimSpace(req.Make),
		PriceMin: req.PriceMin,
		PriceMax: req.PriceMax,
		YearFrom: req.YearFrom,
		YearTo:   req.YearTo,
		Size:     req.Size,
	}

	if q.PriceMin != nil && *q.PriceMin < 0 || q.PriceMax != nil && *q.PriceMax < 0 {
		return nil, ErrFilterInvalid
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		return nil, ErrFilterInvalid
	}
	if q.YearFrom != nil && q.YearTo != nil && *q.YearFrom > *q.YearTo {
		return nil, ErrFilterInvalid
	}

	switch {
	case q.Size <= 0:
		q.Size = defaultSearchSize
	case q.Size > maxSearchSize:
		q.Size = maxSearchSize
	}

	after, err := util.DecodeCursor(strings.TrimSpace(req.Cursor))
	if err != nil {
		return nil, ErrParamInvalid
	}
	q.After = after
	return q, nil
}
