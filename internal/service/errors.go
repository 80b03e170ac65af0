package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrAmountInvalid        = errors.New("报价金额必须大于 0")
	ErrMessageEmpty         = errors.New("消息内容不能为空")
	ErrStatusInvalid        = errors.New("只能接受或拒绝报价")
	ErrFilterInvalid        = errors.New("筛选条件不合法")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrVehicleNotFound      = errors.New("车辆不存在")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrOfferNotFound        = errors.New("报价不存在")
	ErrNotParticipant       = errors.New("不是该会话的参与方")
	ErrNotRecipient         = errors.New("只有报价接收方可以处理该报价")
	ErrRecipientMismatch    = errors.New("报价接收方必须是会话对方")
	ErrVehicleMismatch      = errors.New("报价车辆与会话不一致")
	ErrSelfConversation     = errors.New("不能与自己发起会话")
	ErrOfferNotPending      = errors.New("报价已被处理，请刷新后重试")
	ErrPendingOfferExists   = errors.New("当前已有待处理的报价")
	ErrNegotiationConcluded = errors.New("议价已结束")
	ErrNegotiationBusy      = errors.New("会话正在处理其他操作，请稍后重试")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrAmountInvalid:        BadRequest,
	ErrMessageEmpty:         BadRequest,
	ErrStatusInvalid:        BadRequest,
	ErrFilterInvalid:        BadRequest,
	ErrUserNotFound:         NotFound,
	ErrVehicleNotFound:      NotFound,
	ErrConversationNotFound: NotFound,
	ErrOfferNotFound:        NotFound,
	ErrNotParticipant:       Forbidden,
	ErrNotRecipient:         Forbidden,
	ErrRecipientMismatch:    BadRequest,
	ErrVehicleMismatch:      BadRequest,
	ErrSelfConversation:     BadRequest,
	ErrOfferNotPending:      Conflict,
	ErrPendingOfferExists:   Conflict,
	ErrNegotiationConcluded: Conflict,
	ErrNegotiationBusy:      ServiceUnavailable,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}

// ErrorKind 客户端可见的错误分类
type ErrorKind string

const (
	KindPermission ErrorKind = "PERMISSION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindValidation ErrorKind = "VALIDATION"
	KindTransient  ErrorKind = "TRANSIENT"
)

// Lookup 返回 err 链上第一个已登记的业务错误及其业务码
func Lookup(err error) (error, int, bool) {
	if err == nil {
		return nil, 0, false
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if code, ok := ErrorMap[e]; ok {
			return e, code, true
		}
	}
	for known, code := range ErrorMap {
		if errors.Is(err, known) {
			return known, code, true
		}
	}
	return nil, 0, false
}

// KindOf 未登记的错误一律视为可重试的瞬时错误；状态冲突需要用户刷新后重新输入，归为校验类
func KindOf(err error) ErrorKind {
	_, code, ok := Lookup(err)
	if !ok {
		return KindTransient
	}
	switch code {
	case Unauthorized, Forbidden:
		return KindPermission
	case NotFound:
		return KindNotFound
	case BadRequest, Conflict:
		return KindValidation
	default:
		return KindTransient
	}
}
