package realtime

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"movehub/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // origin check lives in CORS config
}

// Handler owns the live-connection endpoint
type Handler struct {
	hub        *Hub
	jwtService *jwt.Service
	authGrace  time.Duration
}

func NewHandler(hub *Hub, jwtService *jwt.Service, authGrace time.Duration) *Handler {
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		authGrace:  authGrace,
	}
}

// HandleWebSocket upgrades the connection and attaches it to the caller's
// room.
//
// Endpoint: GET /ws?token=JWT_TOKEN (or Authorization: Bearer header).
//
// When no credential arrives with the handshake, the client gets one
// authenticate message within the grace window — and that message must
// carry a verifiable token. Bare user id claims are refused outright:
// anonymous connections are not supported.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := credentialFromRequest(c)

	if token != "" {
		claims, err := h.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
			})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws upgrade failed: %v", err)
			return
		}
		h.serveAuthenticated(conn, claims)
		return
	}

	// No credential in the handshake: upgrade, then demand an
	// authenticate message before anything is delivered.
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	claims, ok := h.awaitAuthenticate(conn)
	if !ok {
		conn.Close()
		return
	}
	h.serveAuthenticated(conn, claims)
}

func (h *Handler) serveAuthenticated(conn *websocket.Conn, claims *jwt.Claims) {
	log.Printf("ws connected user_id=%d role=%s", claims.UserID, claims.Role)
	conn.WriteJSON(&Event{Channel: EventAuthenticated})

	h.hub.ServeConn(conn, claims.UserID) // blocks until disconnect

	log.Printf("ws disconnected user_id=%d", claims.UserID)
}

// awaitAuthenticate reads messages until a valid authenticate arrives or
// the grace deadline passes
func (h *Handler) awaitAuthenticate(conn *websocket.Conn) (*jwt.Claims, bool) {
	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(h.authGrace))

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, false
		}

		if msg.Type != "authenticate" {
			conn.WriteJSON(newErrorEvent("UNAUTHORIZED", "Authenticate first"))
			continue
		}

		if msg.Token == "" {
			// a bare user id is not a credential
			conn.WriteJSON(newErrorEvent("UNAUTHORIZED", "Token is required"))
			return nil, false
		}

		claims, err := h.jwtService.ValidateToken(msg.Token)
		if err != nil {
			conn.WriteJSON(newErrorEvent("UNAUTHORIZED", "Invalid or expired token"))
			return nil, false
		}

		conn.SetReadDeadline(time.Time{})
		return claims, true
	}
}

func credentialFromRequest(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RegisterRoutes mounts the live-connection endpoint
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws", h.HandleWebSocket)
}
