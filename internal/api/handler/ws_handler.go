package handler

import (
	"Motorway/internal/pkg/consts"
	"Motorway/internal/pkg/logger"
	"Motorway/internal/pkg/redis"
	"Motorway/internal/pkg/response"
	"Motorway/internal/pkg/security"
	"Motorway/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 把用户个人频道上的议价提示转发给浏览器
type WsHandler struct {
	tokens *security.TokenManager
	rdb    *redis.Client
}

func NewWsHandler(tokens *security.TokenManager, rdb *redis.Client) *WsHandler {
	return &WsHandler{tokens: tokens, rdb: rdb}
}

func (s *WsHandler) Connect(c *gin.Context) {
	// 浏览器无法为 WS 设置请求头，token 放在 query 中
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		log.WarnContext(c.Request.Context(), "WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(context.WithValue(c.Request.Context(), logger.UserIDKey, userID))
	defer cancel()

	pubsub := s.rdb.Subscribe(ctx, consts.IMUserChannelKey+strconv.FormatUint(userID, 10))
	defer func() {
		_ = pubsub.Close()
	}()

	log.InfoContext(ctx, "用户 WS 连接已建立")

	// 读循环：处理 pong 并监听客户端断开
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	redisCh := pubsub.Channel()
	for {
		select {
		case msg, ok := <-redisCh:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.WarnContext(ctx, "WS 推送失败", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			log.InfoContext(ctx, "用户 WS 连接已断开")
			return
		}
	}
}
