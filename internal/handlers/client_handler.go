package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type clientLister interface {
	ListClientsByCoachID(ctx context.Context, coachID int64) ([]models.User, error)
}

type ClientHandler struct {
	userRepo clientLister
}

func NewClientHandler(userRepo clientLister) *ClientHandler {
	return &ClientHandler{userRepo: userRepo}
}

// ListClients returns the coach's roster, the population programs can
// be assigned to.
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}

	clients, err := h.userRepo.ListClientsByCoachID(c.Context(), coachID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to list clients"})
	}

	return c.JSON(fiber.Map{"clients": clients})
}
