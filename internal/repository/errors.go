package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrOfferStale 报价已不是 PENDING，比较并交换失败
	ErrOfferStale = errors.New("offer is no longer pending")
	// ErrPendingOfferExists 会话内已有待处理报价
	ErrPendingOfferExists = errors.New("conversation already has a pending offer")
	// ErrNegotiationClosed 车辆已售出或已有报价被接受
	ErrNegotiationClosed = errors.New("negotiation is closed")
)

// IsDuplicateKey 判断是否为唯一索引冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
