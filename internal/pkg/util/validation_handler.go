package util

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateDTO 校验请求体，只返回第一条失败规则
func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("字段 [%s] 校验失败，规则 [%s]: %w", firstError.Field(), firstError.Tag(), vErrs)
		}
		return err
	}
	return nil
}

// ParseRef 会话/报价引用既可以是自增 ID，也可以是 UUID 形式的公开 ID
func ParseRef(ref string) (id uint64, publicID string) {
	if n, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return n, ""
	}
	return 0, ref
}
