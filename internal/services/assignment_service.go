package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrClientNotFound     = errors.New("client not found")
	ErrAssignmentInactive = errors.New("assignment is not active")
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type programReader interface {
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
}

type assignmentStore interface {
	Create(ctx context.Context, input repository.CreateAssignmentInput) (*models.ClientProgram, error)
	GetByID(ctx context.Context, id int64) (*models.ClientProgram, error)
	ListActive(ctx context.Context, clientID int64, programID int64) ([]models.ClientProgram, error)
	DeactivateIfActive(ctx context.Context, id int64) error
}

// ProgramNotifier pushes lifecycle events to connected clients. A nil
// notifier disables pushes without touching the write path.
type ProgramNotifier interface {
	ProgramAssigned(assignment *models.ClientProgram)
	ProgramUnassigned(assignment *models.ClientProgram)
	OverrideSaved(clientID int64, clientProgramID int64)
}

type AssignmentService struct {
	db             *pgxpool.Pool
	assignmentRepo assignmentStore
	programRepo    programReader
	userRepo       userReader
	notifier       ProgramNotifier
}

func NewAssignmentService(
	db *pgxpool.Pool,
	assignmentRepo *repository.AssignmentRepository,
	programRepo *repository.ProgramRepository,
	userRepo userReader,
	notifier ProgramNotifier,
) *AssignmentService {
	return &AssignmentService{
		db:             db,
		assignmentRepo: assignmentRepo,
		programRepo:    programRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

type AssignProgramInput struct {
	ClientID  int64
	ProgramID int64
	StartDate time.Time
}

// Assign activates a program for a client. Any previously active
// assignment for the same (client, program) pair is deactivated first,
// then the new row is created, inside one transaction serialized per
// client with an advisory lock. The ordering keeps the single-active
// invariant even where the storage layer cannot enforce it.
func (s *AssignmentService) Assign(
	ctx context.Context,
	coachID int64,
	input AssignProgramInput,
) (*models.ClientProgram, error) {
	if coachID <= 0 || input.ClientID <= 0 || input.ProgramID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.StartDate.IsZero() {
		return nil, ErrInvalidInput
	}

	client, err := s.userRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != models.RoleClient {
		return nil, ErrInvalidInput
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrForbidden
	}

	program, err := s.programRepo.GetByID(ctx, input.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.ClientID); err != nil {
		return nil, err
	}

	txAssignmentRepo := repository.NewAssignmentRepository(tx)

	if _, err := txAssignmentRepo.DeactivateActive(ctx, input.ClientID, input.ProgramID); err != nil {
		return nil, err
	}

	assignment, err := txAssignmentRepo.Create(ctx, repository.CreateAssignmentInput{
		ClientID:  input.ClientID,
		ProgramID: input.ProgramID,
		StartDate: input.StartDate,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ProgramAssigned(assignment)
	}

	return assignment, nil
}

// Unassign deactivates an active assignment. A second call for the
// same id surfaces pgx.ErrNoRows ("not found among active") instead of
// silently succeeding, so callers can tell "already done" from "never
// existed". Overrides are kept for audit and history.
func (s *AssignmentService) Unassign(
	ctx context.Context,
	coachID int64,
	clientProgramID int64,
) (*models.ClientProgram, error) {
	if clientProgramID <= 0 {
		return nil, ErrInvalidInput
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, clientProgramID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, assignment.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrForbidden
	}

	if !assignment.IsActive {
		return nil, pgx.ErrNoRows
	}

	if err := s.assignmentRepo.DeactivateIfActive(ctx, clientProgramID); err != nil {
		return nil, err
	}
	assignment.IsActive = false

	if s.notifier != nil {
		s.notifier.ProgramUnassigned(assignment)
	}

	return assignment, nil
}

// ActiveAssignment resolves which assignment is active for the pair.
// Finding more than one active row breaks the invariant; the read does
// not fail, it picks the most recently assigned row and reports the
// anomaly so operators can investigate.
func (s *AssignmentService) ActiveAssignment(
	ctx context.Context,
	actorID int64,
	role string,
	clientID int64,
	programID int64,
) (*models.ClientProgram, error) {
	if clientID <= 0 || programID <= 0 {
		return nil, ErrInvalidInput
	}

	switch role {
	case models.RoleClient:
		if actorID != clientID {
			return nil, ErrForbidden
		}
	case models.RoleCoach:
		client, err := s.userRepo.GetByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrClientNotFound
			}
			return nil, err
		}
		if client.CoachID == nil || *client.CoachID != actorID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	active, err := s.assignmentRepo.ListActive(ctx, clientID, programID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, pgx.ErrNoRows
	}
	if len(active) > 1 {
		log.Printf(
			"invariant violation: %d active assignments for client %d program %d, using most recent (id %d)",
			len(active), clientID, programID, active[0].ID,
		)
	}

	return &active[0], nil
}
