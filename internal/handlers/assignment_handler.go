package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/services"
	programws "github.com/silverxhexhaj/nutricoach-sub001/internal/websocket"
	"github.com/silverxhexhaj/nutricoach-sub001/pkg/utils"
)

const startDateLayout = "2006-01-02"

type assignmentManager interface {
	Assign(ctx context.Context, coachID int64, input services.AssignProgramInput) (*models.ClientProgram, error)
	Unassign(ctx context.Context, coachID int64, clientProgramID int64) (*models.ClientProgram, error)
	ActiveAssignment(ctx context.Context, actorID int64, role string, clientID int64, programID int64) (*models.ClientProgram, error)
}

type programResolver interface {
	ResolveClientProgram(ctx context.Context, actorID int64, role string, clientProgramID int64, opts services.MergeOptions) ([]models.ResolvedDay, error)
}

type AssignmentHandler struct {
	service   assignmentManager
	resolver  programResolver
	hub       *programws.Hub
	jwtSecret string
}

func NewAssignmentHandler(
	service assignmentManager,
	resolver programResolver,
	hub *programws.Hub,
	jwtSecret string,
) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		resolver:  resolver,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

func (h *AssignmentHandler) AssignProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	clientID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
	}

	var req struct {
		ProgramID int64  `json:"program_id"`
		StartDate string `json:"start_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startDate, err := time.Parse(startDateLayout, req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "start_date must be formatted as YYYY-MM-DD"})
	}

	assignment, err := h.service.Assign(c.Context(), coachID, services.AssignProgramInput{
		ClientID:  clientID,
		ProgramID: req.ProgramID,
		StartDate: startDate,
	})
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignment": assignment})
}

func (h *AssignmentHandler) UnassignProgram(c *fiber.Ctx) error {
	coachID, err := requireCoach(c)
	if err != nil {
		return err
	}
	clientProgramID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment id"})
	}

	if _, err := h.service.Unassign(c.Context(), coachID, clientProgramID); err != nil {
		return mapAssignmentError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AssignmentHandler) GetActiveAssignment(c *fiber.Ctx) error {
	actorID, err := actorFromLocals(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	clientID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
	}
	programID, err := strconv.ParseInt(c.Query("program_id"), 10, 64)
	if err != nil || programID <= 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "program_id must be a positive integer"})
	}

	assignment, err := h.service.ActiveAssignment(c.Context(), actorID, roleFromLocals(c), clientID, programID)
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return c.JSON(fiber.Map{"assignment": assignment})
}

// ResolveView returns the merged program a client sees for one
// assignment. include_hidden=true switches to the coach-editing view
// that keeps hidden items in place.
func (h *AssignmentHandler) ResolveView(c *fiber.Ctx) error {
	actorID, err := actorFromLocals(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	clientProgramID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment id"})
	}

	includeHidden := c.Query("include_hidden") == "true"
	days, err := h.resolver.ResolveClientProgram(
		c.Context(),
		actorID,
		roleFromLocals(c),
		clientProgramID,
		services.MergeOptions{IncludeHidden: includeHidden},
	)
	if err != nil {
		return mapAssignmentError(c, err)
	}

	return c.JSON(fiber.Map{"days": days})
}

// WebSocketAuth authenticates the upgrade request from a token query
// parameter, since browsers cannot set headers on websocket dials.
func (h *AssignmentHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	claims, err := utils.ValidateToken(c.Query("token"), h.jwtSecret)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *AssignmentHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	client := programws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func mapAssignmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrClientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	case errors.Is(err, services.ErrAssignmentInactive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Assignment is not active"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": "Assignment or related resource not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process assignment request"})
	}
}
