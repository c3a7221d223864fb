package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bankbot/internal/models"
	"bankbot/internal/services"
)

// AccountHandler serves bank account setup and dashboard endpoints
type AccountHandler struct {
	userService *services.UserService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(userService *services.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

// CreateAccount attaches bank account details to the authenticated user
// POST /api/account
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	req.AccountType = strings.TrimSpace(req.AccountType)
	if req.AccountNumber == "" || req.AccountType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Account number and account type are required",
		})
	}
	if req.Balance < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Balance cannot be negative",
		})
	}

	if err := h.userService.SetAccount(userID, req.AccountNumber, req.AccountType, req.Balance); err != nil {
		switch {
		case errors.Is(err, services.ErrAccountTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Account number already exists",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		default:
			log.Printf("❌ Failed to create account: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create account",
			})
		}
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// Dashboard returns the authenticated user's account overview
// GET /api/dashboard
func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user":        user.ToResponse(),
		"has_account": user.HasAccount(),
	})
}

// CheckBalance looks up a balance by account number
// POST /api/account/balance
func (h *AccountHandler) CheckBalance(c *fiber.Ctx) error {
	var req models.CheckBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	if req.AccountNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Account number is required",
		})
	}

	user, err := h.userService.GetByAccountNumber(req.AccountNumber)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Account not found",
			})
		}
		log.Printf("❌ Failed to look up account: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up account",
		})
	}

	return c.JSON(fiber.Map{
		"account_number": user.AccountNumber,
		"account_type":   user.AccountType,
		"balance":        user.Balance,
	})
}
