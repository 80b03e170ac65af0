package kafka

import (
	"fmt"
	"strconv"
)

const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据
	Old []map[string]interface{} `json:"old"`
}

// StrToUint64 canal 把所有列都序列化成字符串
func StrToUint64(v interface{}) uint64 {
	switch t := v.(type) {
	case string:
		n, _ := strconv.ParseUint(t, 10, 64)
		return n
	case float64:
		return uint64(t)
	case nil:
		return 0
	default:
		n, _ := strconv.ParseUint(fmt.Sprint(t), 10, 64)
		return n
	}
}
