package dto

// Response 统一响应体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"` // 错误分类，成功时为空
	Data    interface{} `json:"data"`
}
