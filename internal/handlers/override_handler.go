package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/services"
)

type overrideEditor interface {
	CreateOverride(ctx context.Context, actorID int64, role string, clientProgramID int64, input services.CreateOverrideInput) (*models.ClientProgramItemOverride, error)
	UpdateOverride(ctx context.Context, actorID int64, role string, overrideID int64, input services.UpdateOverrideInput) (*models.ClientProgramItemOverride, error)
	DeleteOverride(ctx context.Context, actorID int64, role string, overrideID int64) error
}

type OverrideHandler struct {
	service overrideEditor
}

func NewOverrideHandler(service overrideEditor) *OverrideHandler {
	return &OverrideHandler{service: service}
}

type overrideRequest struct {
	ProgramDayID int64           `json:"program_day_id"`
	SourceItemID *int64          `json:"source_item_id"`
	Action       string          `json:"action"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Content      json.RawMessage `json:"content"`
	SortOrder    int             `json:"sort_order"`
}

func (h *OverrideHandler) CreateOverride(c *fiber.Ctx) error {
	actorID, err := actorFromLocals(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	clientProgramID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment id"})
	}

	var req overrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	override, err := h.service.CreateOverride(
		c.Context(),
		actorID,
		roleFromLocals(c),
		clientProgramID,
		services.CreateOverrideInput{
			ProgramDayID: req.ProgramDayID,
			SourceItemID: req.SourceItemID,
			Action:       req.Action,
			Type:         req.Type,
			Title:        req.Title,
			Content:      req.Content,
			SortOrder:    req.SortOrder,
		},
	)
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"override": override})
}

func (h *OverrideHandler) UpdateOverride(c *fiber.Ctx) error {
	actorID, err := actorFromLocals(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	overrideID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid override id"})
	}

	var req overrideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	override, err := h.service.UpdateOverride(
		c.Context(),
		actorID,
		roleFromLocals(c),
		overrideID,
		services.UpdateOverrideInput{
			Type:      req.Type,
			Title:     req.Title,
			Content:   req.Content,
			SortOrder: req.SortOrder,
		},
	)
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return c.JSON(fiber.Map{"override": override})
}

func (h *OverrideHandler) DeleteOverride(c *fiber.Ctx) error {
	actorID, err := actorFromLocals(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	overrideID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid override id"})
	}

	if err := h.service.DeleteOverride(c.Context(), actorID, roleFromLocals(c), overrideID); err != nil {
		return mapAssignmentError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
