package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	iauth "github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/realtime"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
	"github.com/dumumtergo/server/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated WebSocket
// streams and keeps the connection registry in sync with socket lifecycle.
type RealtimeHandler struct {
	registry *realtime.Registry
	jwt      *iauth.JWTService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(registry *realtime.Registry, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{
		registry: registry,
		jwt:      jwt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// Stream validates the caller, upgrades the request to a WebSocket, and
// registers the socket for push notifications. The identity under which the
// socket is registered always comes from the validated token, never from
// client-supplied parameters. The socket stays registered until it closes or
// a newer connection for the same account supersedes it.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.registry == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	accountID := strings.TrimSpace(claims.UserID)
	if accountID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.registry.Register(accountID, conn)
	defer func() {
		h.registry.Unregister(accountID, conn)
		_ = conn.Close()
	}()

	// Inbound frames are not part of the protocol; the read loop only
	// detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func hostWithoutPort(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if strings.Contains(value, "://") {
		if parsed, err := url.Parse(value); err == nil {
			value = parsed.Host
		}
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(value)
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
