package handlers

import (
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// ChatWebSocketHandler streams chat turns over a WebSocket connection.
// Each incoming message runs the same pipeline as POST /api/chat.
type ChatWebSocketHandler struct {
	chat *ChatHandler
}

// NewChatWebSocketHandler creates a new chat WebSocket handler
func NewChatWebSocketHandler(chat *ChatHandler) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{chat: chat}
}

// wsChatMessage is one client frame on the chat socket
type wsChatMessage struct {
	Message string `json:"message"`
}

// HandleConnection handles an incoming chat WebSocket connection
func (h *ChatWebSocketHandler) HandleConnection(c *websocket.Conn) {
	// Get user from fiber context (set by auth middleware)
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		c.WriteJSON(fiber.Map{
			"error": "Authentication required",
		})
		c.Close()
		return
	}

	// Set read deadline so hung connections are detected.
	// Reset on every successful read or pong.
	const readTimeout = 90 * time.Second
	c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg wsChatMessage
		if err := c.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Chat WebSocket closed unexpectedly for user %s: %v", userID, err)
			}
			return
		}
		c.SetReadDeadline(time.Now().Add(readTimeout))

		resp := h.chat.chatService.HandleTurn(userID, msg.Message, h.chat.snapshot(userID))
		if err := c.WriteJSON(resp); err != nil {
			log.Printf("⚠️ Failed to write chat reply for user %s: %v", userID, err)
			return
		}
	}
}

// UpgradeMiddleware rejects non-WebSocket requests on the chat socket route
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
