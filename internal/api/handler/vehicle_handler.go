package handler

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/pkg/response"
	"Motorway/internal/pkg/util"
	"Motorway/internal/service"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// SearchVehicles 在售车辆搜索，游标翻页
func (s *VehicleHandler) SearchVehicles(c *gin.Context) {
	var req dto.VehicleSearchReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.vehicleService.SearchVehicles(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
