package kafka

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/es"
	"Motorway/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// VehicleHandler 消费 vehicles 表的 binlog，同步搜索索引
type VehicleHandler struct {
	vehicleDBRepo repository.VehicleRepo
	vehicleESRepo es.VehicleRepo
}

func NewVehicleHandler(vehicleDBRepo repository.VehicleRepo, vehicleESRepo es.VehicleRepo) *VehicleHandler {
	return &VehicleHandler{vehicleDBRepo: vehicleDBRepo, vehicleESRepo: vehicleESRepo}
}

func (s *VehicleHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("vehicle consumer setup")
	return nil
}

func (s *VehicleHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("vehicle consumer cleanup")
	return nil
}

func (s *VehicleHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.Handle)
}

// Handle 以数据库当前行为准回表，binlog 时间戳作为 ES 外部版本号
func (s *VehicleHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "vehicles")
	if err != nil {
		return err
	}

	for _, row := range canalMsg.Data {
		id := StrToUint64(row["id"])
		if id == 0 {
			continue
		}
		if canalMsg.Type == DELETE {
			if err = s.vehicleESRepo.DeleteVehicle(ctx, id); err != nil {
				return pkgerrors.Wrapf(err, "delete vehicle %d from index", id)
			}
			continue
		}

		v, err := s.vehicleDBRepo.GetVehicleByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err = s.vehicleESRepo.DeleteVehicle(ctx, id); err != nil {
				return pkgerrors.Wrapf(err, "delete vehicle %d from index", id)
			}
			continue
		}
		if err != nil {
			return pkgerrors.Wrapf(err, "load vehicle %d", id)
		}

		if v.Status == model.VehicleStatusSold {
			err = s.vehicleESRepo.DeleteVehicle(ctx, id)
		} else {
			err = s.vehicleESRepo.IndexVehicle(ctx, es.FromVehicle(v), canalMsg.TS)
		}
		if err != nil {
			return pkgerrors.Wrapf(err, "sync vehicle %d", id)
		}
	}
	return nil
}
