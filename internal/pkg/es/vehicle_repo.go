package es

import (
	"Motorway/internal/model"
	"context"
	"errors"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

type VehicleRepo interface {
	SearchVehicles(ctx context.Context, q *VehicleQuery) ([]*VehicleES, error)
	IndexVehicle(ctx context.Context, v *VehicleES, version int64) error
	DeleteVehicle(ctx context.Context, id uint64) error
}

type VehicleRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewVehicleRepo(client *elasticsearch.TypedClient, index string) VehicleRepo {
	return &VehicleRepoImpl{client: client, index: index}
}

// SearchVehicles 只返回在售车辆，按上架时间倒序，SearchAfter 翻页
func (s *VehicleRepoImpl) SearchVehicles(ctx context.Context, q *VehicleQuery) ([]*VehicleES, error) {
	req := s.client.Search().
		Index(s.index).
		Query(&types.Query{Bool: BuildVehicleQuery(q)}).
		Sort(
			types.SortOptions{SortOptions: map[string]types.FieldSort{"created_at": {Order: &sortorder.Desc}}},
			types.SortOptions{SortOptions: map[string]types.FieldSort{"id": {Order: &sortorder.Asc}}},
		).
		Size(q.Size)

	if len(q.After) > 0 {
		searchAfterValues := make([]types.FieldValue, len(q.After))
		for i, v := range q.After {
			searchAfterValues[i] = v
		}
		req.SearchAfter(searchAfterValues...)
	}
	return s.executeSearch(ctx, req)
}

// BuildVehicleQuery 过滤条件放在 filter 中不参与打分
func BuildVehicleQuery(q *VehicleQuery) *types.BoolQuery {
	boolQuery := &types.BoolQuery{
		Filter: []types.Query{
			{Term: map[string]types.TermQuery{"status": {Value: model.VehicleStatusActive}}},
		},
	}

	if q.Keyword != "" {
		boolQuery.Must = append(boolQuery.Must, types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  q.Keyword,
				Fields: []string{"title^2", "make", "model"},
			},
		})
	}
	if q.Make != "" {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			Term: map[string]types.TermQuery{"make": {Value: q.Make}},
		})
	}
	if q.PriceMin != nil || q.PriceMax != nil {
		r := types.NumberRangeQuery{}
		if q.PriceMin != nil {
			r.Gte = float64Ptr(float64(*q.PriceMin))
		}
		if q.PriceMax != nil {
			r.Lte = float64Ptr(float64(*q.PriceMax))
		}
		boolQuery.Filter = append(boolQuery.Filter, types.Query{Range: map[string]types.RangeQuery{"price": r}})
	}
	if q.YearFrom != nil || q.YearTo != nil {
		r := types.NumberRangeQuery{}
		if q.YearFrom != nil {
			r.Gte = float64Ptr(float64(*q.YearFrom))
		}
		if q.YearTo != nil {
			r.Lte = float64Ptr(float64(*q.YearTo))
		}
		boolQuery.Filter = append(boolQuery.Filter, types.Query{Range: map[string]types.RangeQuery{"year": r}})
	}
	return boolQuery
}

// IndexVehicle 以 binlog 时间戳作为外部版本号，旧版本写入被忽略
func (s *VehicleRepoImpl) IndexVehicle(ctx context.Context, v *VehicleES, version int64) error {
	_, err := s.client.Index(s.index).
		Id(strconv.FormatUint(v.ID, 10)).
		Document(v).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == ConflictCode {
			return nil
		}
		return err
	}
	return nil
}

func (s *VehicleRepoImpl) DeleteVehicle(ctx context.Context, id uint64) error {
	_, err := s.client.Delete(s.index, strconv.FormatUint(id, 10)).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == NotFoundCode {
			return nil
		}
		return err
	}
	return nil
}

func (s *VehicleRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*VehicleES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*VehicleES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var v VehicleES
		if err = json.Unmarshal(hit.Source_, &v); err != nil {
			continue
		}
		if len(hit.Sort) > 0 {
			v.Sort = make([]interface{}, len(hit.Sort))
			for i, sv := range hit.Sort {
				v.Sort[i] = sv
			}
		}
		results = append(results, &v)
	}
	return results, nil
}

func float64Ptr(f float64) *types.Float64 {
	v := types.Float64(f)
	return &v
}
