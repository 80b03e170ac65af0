package response

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

func failWithKind(c *gin.Context, businessCode int, kind service.ErrorKind, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Kind:    string(kind),
		Data:    nil,
	})
}

// Error 处理错误，附带错误分类供前端决定提示方式
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		failWithKind(c, BadRequest, service.KindValidation, "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		failWithKind(c, BadRequest, service.KindValidation, "Json错误")
		return
	}

	known, code, ok := service.Lookup(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		failWithKind(c, InternalServerError, service.KindTransient, service.UnExpectedError.Error())
		return
	}
	failWithKind(c, code, service.KindOf(known), known.Error())
}
