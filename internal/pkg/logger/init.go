package logger

import (
	"Motorway/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"time"
)

// InitLogger 初始化全局 slog：stdout JSON，配置了 Logstash 时额外上报带 trace_id 的日志
// 返回 gin 访问日志应写入的 Writer
func InitLogger(cfg config.LogstashConfig) io.Writer {
	hStdout := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: log.LevelInfo})
	var finalHandler log.Handler = hStdout
	var writer io.Writer = os.Stdout

	if cfg.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Address, 3*time.Second)
		if err == nil {
			hRemote := log.NewJSONHandler(conn, &log.HandlerOptions{Level: log.LevelInfo}).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Index),
					log.String("log_token", cfg.Token),
				})
			finalHandler = &TeeHandler{
				handlers: []log.Handler{hStdout, &RemoteFilterHandler{next: hRemote}},
			}
			writer = io.MultiWriter(os.Stdout, conn)
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{finalHandler}))
	return writer
}
