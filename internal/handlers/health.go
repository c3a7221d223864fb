package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"bankbot/internal/corpus"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	corpusStore *corpus.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(corpusStore *corpus.Store) *HealthHandler {
	return &HealthHandler{corpusStore: corpusStore}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"corpus_rows": h.corpusStore.Len(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
