package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bankbot/internal/models"
	"bankbot/internal/services"
)

// ChatHandler serves the chatbot endpoints
type ChatHandler struct {
	chatService *services.ChatService
	userService *services.UserService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, userService *services.UserService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
	}
}

// Chat processes one chat message and returns the bot reply
// POST /api/chat
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := h.chatService.HandleTurn(userID, req.Message, h.snapshot(userID))
	return c.JSON(resp)
}

// History returns the user's ordered conversation log
// GET /api/chat/history
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	history := h.chatService.History(userID)
	if history == nil {
		history = []models.ConversationTurn{}
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

// snapshot loads the user's current account details to seed a fresh chat
// context. Users without a bank account get an empty snapshot.
func (h *ChatHandler) snapshot(userID string) models.AccountSnapshot {
	user, err := h.userService.GetByID(userID)
	if err != nil {
		return models.AccountSnapshot{}
	}
	return models.AccountSnapshot{
		AccountNumber: user.AccountNumber,
		Balance:       user.Balance,
	}
}
