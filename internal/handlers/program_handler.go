package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/services"
)

type programAuthoringService interface {
	CreateProgram(ctx context.Context, coachID int64, input services.CreateProgramInput) (*models.ProgramDetail, error)
	GetProgram(ctx context.Context, coachID int64, programID int64) (*models.ProgramDetail, error)
	ListPrograms(ctx context.Context, coachID int64, page int, limit int) ([]models.Program, int, error)
	UpdateProgram(ctx context.Context, coachID int64, programID int64, input services.UpdateProgramInput) (*models.Program, error)
	DeleteProgram(ctx context.Context, coachID int64, programID int64) error
	SetDayLabel(ctx context.Context, coachID int64, programID int64, dayNumber int, label *string) (*models.ProgramDay, error)
	AddItem(ctx context.Context, coachID int64, input services.AddItemInput) (*models.ProgramItem, error)
	UpdateItem(ctx context.Context, coachID int64, itemID int64, input services.UpdateItemInput) (*models.ProgramItem, error)
	DeleteItem(ctx context.Context, coachID int64, itemID int64) error
}

type ProgramHandler struct {
	service programAuthoringService
}

func NewProgramHandler(service programAuthoringService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

type programRequest struct {
	Name          string   `json:"name"`
	Tags          []string `json:"tags"`
	Difficulty    int      `json:"difficulty"`
	DaysPerWeek   *int     `json:"days_per_week"`
	DurationWeeks int      `json:"duration_weeks"`
	StartWeekday  int      `json:"start_weekday"`
	Color         string   `json:"color"`
}

func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	program, err := h.service.CreateProgram(c.Context(), coachID, services.CreateProgramInput{
		Name:          req.Name,
		Tags:          req.Tags,
		Difficulty:    req.Difficulty,
		DaysPerWeek:   req.DaysPerWeek,
		DurationWeeks: req.DurationWeeks,
		StartWeekday:  req.StartWeekday,
		Color:         req.Color,
	})
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}

	page, limit := parsePagination(c)
	programs, total, err := h.service.ListPrograms(c.Context(), coachID, page, limit)
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.JSON(fiber.Map{
		"programs":   programs,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	program, err := h.service.GetProgram(c.Context(), coachID, programID)
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	program, err := h.service.UpdateProgram(c.Context(), coachID, programID, services.UpdateProgramInput{
		Name:         req.Name,
		Tags:         req.Tags,
		Difficulty:   req.Difficulty,
		DaysPerWeek:  req.DaysPerWeek,
		StartWeekday: req.StartWeekday,
		Color:        req.Color,
	})
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}

	if err := h.service.DeleteProgram(c.Context(), coachID, programID); err != nil {
		return mapAuthoringError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProgramHandler) SetDayLabel(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid program id"})
	}
	dayNumber, err := strconv.Atoi(c.Params("dayNumber"))
	if err != nil || dayNumber < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid day number"})
	}

	var req struct {
		Label *string `json:"label"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	day, err := h.service.SetDayLabel(c.Context(), coachID, programID, dayNumber, req.Label)
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.JSON(fiber.Map{"day": day})
}

type itemRequest struct {
	Type      *string         `json:"type"`
	Title     *string         `json:"title"`
	Content   json.RawMessage `json:"content"`
	SortOrder *int            `json:"sort_order"`
}

func (h *ProgramHandler) AddItem(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	dayID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid day id"})
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.AddItemInput{
		DayID:     dayID,
		Content:   req.Content,
		SortOrder: req.SortOrder,
	}
	if req.Type != nil {
		input.Type = *req.Type
	}
	if req.Title != nil {
		input.Title = *req.Title
	}

	item, err := h.service.AddItem(c.Context(), coachID, input)
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

func (h *ProgramHandler) UpdateItem(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, err := h.service.UpdateItem(c.Context(), coachID, itemID, services.UpdateItemInput{
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return mapAuthoringError(c, err)
	}

	return c.JSON(fiber.Map{"item": item})
}

func (h *ProgramHandler) DeleteItem(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item id"})
	}

	if err := h.service.DeleteItem(c.Context(), coachID, itemID); err != nil {
		return mapAuthoringError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func requireCoach(c *fiber.Ctx) (int64, error) {
	if roleFromLocals(c) != models.RoleCoach {
		return 0, fiber.ErrForbidden
	}
	coachID, err := actorFromLocals(c)
	if err != nil {
		return 0, fiber.ErrUnauthorized
	}
	return coachID, nil
}

func mapAuthoringError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program or related resource not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process program request"})
	}
}
