package api

import (
	"net/http"
	"sync"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	chatHistory = "history"
	chatMessage = "message"
	chatError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type chatRoutes struct {
	cs *service.ChatService
	ws *service.WorkspaceService
}

type Frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message any    `json:"message,omitempty"`
}

func NewChatRoutes(handler *gin.RouterGroup, cs *service.ChatService, ws *service.WorkspaceService) {
	r := &chatRoutes{cs: cs, ws: ws}
	h := handler.Group("/chat")
	h.Use(middleware.RequireRoles(chatRoles()...))
	{
		h.GET("/ws", r.handleWebSocket)
	}
}

func chatRoles() []model.Role {
	var roles []model.Role
	for _, role := range model.Roles {
		if role.HasChat() {
			roles = append(roles, role)
		}
	}
	return roles
}

// chatConn serializes writes: replies arrive from timer goroutines while the
// read loop answers the user.
type chatConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cc *chatConn) send(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		logger.Logger().Error("failed to marshal chat frame", zap.Error(err))
		return
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := cc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Logger().Debug("failed to write chat frame", zap.Error(err))
	}
}

func (r *chatRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()
	sessionID := session(c).ID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	cc := &chatConn{conn: conn}
	chat := r.cs.Open(func(m service.ChatMessage) {
		cc.send(Frame{Type: chatMessage, Message: m})
	})
	workspace := r.ws.For(sessionID)
	workspace.TrackChat(chat)

	cc.send(Frame{Type: chatHistory, Message: chat.History()})
	go r.handleChatLoop(cc, chat, workspace)
}

func (r *chatRoutes) handleChatLoop(cc *chatConn, chat *service.Conversation, workspace *service.Workspace) {
	log := logger.Logger()

	defer func() {
		chat.Close()
		workspace.ReleaseChat(chat)
		cc.conn.Close()
	}()

	for {
		_, msg, err := cc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("websocket unexpected close", zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			log.Debug("failed to unmarshal chat frame", zap.Error(err))
			cc.send(Frame{Type: chatError, Text: "invalid frame"})
			continue
		}

		switch frame.Type {
		case chatMessage:
			m, ok := chat.Post(frame.Text)
			if !ok {
				continue
			}
			cc.send(Frame{Type: chatMessage, Message: m})
		case chatHistory:
			cc.send(Frame{Type: chatHistory, Message: chat.History()})
		default:
			cc.send(Frame{Type: chatError, Text: "unknown frame type"})
		}
	}
}
