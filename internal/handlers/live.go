package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/huangang/taskflow/backend/internal/middleware"
	"github.com/huangang/taskflow/backend/internal/models"
	"github.com/huangang/taskflow/backend/internal/services"
	"github.com/huangang/taskflow/backend/pkg/logger"
	"github.com/huangang/taskflow/backend/pkg/response"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512
)

// MemberResolver confirms that the token subject is still a member.
type MemberResolver interface {
	Me(ctx context.Context, userID string) (*models.TeamMember, error)
}

// liveMessage is the frame written to WebSocket clients.
type liveMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// LiveHandler streams a member's notifications as they are created, over
// Server-Sent Events or a WebSocket.
type LiveHandler struct {
	hub      *services.LiveHub
	members  MemberResolver
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewLiveHandler creates the live endpoints. origins restricts WebSocket
// upgrades; an empty list or "*" accepts any origin.
func NewLiveHandler(hub *services.LiveHub, members MemberResolver, origins []string) *LiveHandler {
	return &LiveHandler{
		hub:     hub,
		members: members,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: logger.Component("live"),
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return allowed[origin]
	}
}

// resolve returns the authenticated member id or writes 401.
func (h *LiveHandler) resolve(c *gin.Context) (string, bool) {
	member, err := h.members.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return member.ID, true
}

// StreamNotifications pushes notifications as Server-Sent Events
// GET /api/events/notifications
func (h *LiveHandler) StreamNotifications(c *gin.Context) {
	userID, ok := h.resolve(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(sub)

	log := h.log.With().Str("user_id", userID).Str("client_id", sub.ID).Str("transport", "sse").Logger()
	log.Info().Int("total", h.hub.ClientCount()).Msg("live client connected")

	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"client_id\":%q}\n\n", sub.ID)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.C:
			if !ok {
				return false
			}
			data, err := json.Marshal(n)
			if err != nil {
				log.Error().Err(err).Msg("marshal notification")
				return true
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			return true
		case <-c.Request.Context().Done():
			log.Info().Msg("live client disconnected")
			return false
		}
	})
}

// ServeWebSocket pushes notifications over a WebSocket
// GET /api/ws/notifications
func (h *LiveHandler) ServeWebSocket(c *gin.Context) {
	userID, ok := h.resolve(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(sub)

	log := h.log.With().Str("user_id", userID).Str("client_id", sub.ID).Str("transport", "websocket").Logger()
	log.Info().Int("total", h.hub.ClientCount()).Msg("live client connected")

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, sub, done, log)

	log.Info().Msg("live client disconnected")
}

// readPump discards client frames and closes done once the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *services.Subscription, done <-chan struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(liveMessage{Event: "notification", Data: n}); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
