package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

type overrideStore interface {
	Create(ctx context.Context, input repository.CreateOverrideInput) (*models.ClientProgramItemOverride, error)
	GetByID(ctx context.Context, id int64) (*models.ClientProgramItemOverride, error)
	Update(ctx context.Context, id int64, input repository.UpdateOverrideInput) (*models.ClientProgramItemOverride, error)
	Delete(ctx context.Context, id int64) error
}

type dayReader interface {
	GetDayByID(ctx context.Context, dayID int64) (*models.ProgramDay, error)
}

type assignmentReader interface {
	GetByID(ctx context.Context, id int64) (*models.ClientProgram, error)
}

type OverrideService struct {
	overrideRepo   overrideStore
	assignmentRepo assignmentReader
	programRepo    interface {
		programReader
		dayReader
	}
	notifier ProgramNotifier
}

func NewOverrideService(
	overrideRepo *repository.OverrideRepository,
	assignmentRepo *repository.AssignmentRepository,
	programRepo *repository.ProgramRepository,
	notifier ProgramNotifier,
) *OverrideService {
	return &OverrideService{
		overrideRepo:   overrideRepo,
		assignmentRepo: assignmentRepo,
		programRepo:    programRepo,
		notifier:       notifier,
	}
}

type CreateOverrideInput struct {
	ProgramDayID int64
	SourceItemID *int64
	Action       string
	Type         string
	Title        string
	Content      json.RawMessage
	SortOrder    int
}

// CreateOverride records a deviation for one assignment. The template
// itself is never touched; other assignments never see the record.
func (s *OverrideService) CreateOverride(
	ctx context.Context,
	actorID int64,
	role string,
	clientProgramID int64,
	input CreateOverrideInput,
) (*models.ClientProgramItemOverride, error) {
	assignment, err := s.authorizedAssignment(ctx, actorID, role, clientProgramID)
	if err != nil {
		return nil, err
	}
	if !assignment.IsActive {
		return nil, ErrAssignmentInactive
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := validateOverrideInput(input); err != nil {
		return nil, err
	}

	day, err := s.programRepo.GetDayByID(ctx, input.ProgramDayID)
	if err != nil {
		return nil, err
	}
	if day.ProgramID != assignment.ProgramID {
		return nil, ErrInvalidInput
	}

	override, err := s.overrideRepo.Create(ctx, repository.CreateOverrideInput{
		ClientProgramID: clientProgramID,
		ProgramDayID:    input.ProgramDayID,
		SourceItemID:    input.SourceItemID,
		Action:          input.Action,
		Type:            input.Type,
		Title:           input.Title,
		Content:         input.Content,
		SortOrder:       input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OverrideSaved(assignment.ClientID, assignment.ID)
	}

	return override, nil
}

type UpdateOverrideInput struct {
	Type      string
	Title     string
	Content   json.RawMessage
	SortOrder int
}

func (s *OverrideService) UpdateOverride(
	ctx context.Context,
	actorID int64,
	role string,
	overrideID int64,
	input UpdateOverrideInput,
) (*models.ClientProgramItemOverride, error) {
	override, err := s.overrideRepo.GetByID(ctx, overrideID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.authorizedAssignment(ctx, actorID, role, override.ClientProgramID)
	if err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := validateOverrideInput(CreateOverrideInput{
		ProgramDayID: override.ProgramDayID,
		SourceItemID: override.SourceItemID,
		Action:       override.Action,
		Type:         input.Type,
		Title:        input.Title,
		Content:      input.Content,
		SortOrder:    input.SortOrder,
	}); err != nil {
		return nil, err
	}

	updated, err := s.overrideRepo.Update(ctx, overrideID, repository.UpdateOverrideInput{
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		SortOrder: input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.OverrideSaved(assignment.ClientID, assignment.ID)
	}

	return updated, nil
}

func (s *OverrideService) DeleteOverride(
	ctx context.Context,
	actorID int64,
	role string,
	overrideID int64,
) error {
	override, err := s.overrideRepo.GetByID(ctx, overrideID)
	if err != nil {
		return err
	}
	assignment, err := s.authorizedAssignment(ctx, actorID, role, override.ClientProgramID)
	if err != nil {
		return err
	}
	if err := s.overrideRepo.Delete(ctx, overrideID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.OverrideSaved(assignment.ClientID, assignment.ID)
	}

	return nil
}

// authorizedAssignment loads the assignment and checks the actor may
// edit it: the client it belongs to, or the coach owning the program.
func (s *OverrideService) authorizedAssignment(
	ctx context.Context,
	actorID int64,
	role string,
	clientProgramID int64,
) (*models.ClientProgram, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, clientProgramID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleClient:
		if assignment.ClientID != actorID {
			return nil, ErrForbidden
		}
	case models.RoleCoach:
		program, err := s.programRepo.GetByID(ctx, assignment.ProgramID)
		if err != nil {
			return nil, err
		}
		if program.CoachID != actorID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	return assignment, nil
}

func validateOverrideInput(input CreateOverrideInput) error {
	if input.ProgramDayID <= 0 || !models.ValidOverrideAction(input.Action) {
		return ErrInvalidInput
	}
	if len(input.Content) > 0 && !json.Valid(input.Content) {
		return ErrInvalidInput
	}
	if input.SortOrder < 0 {
		return ErrInvalidInput
	}

	switch input.Action {
	case models.OverrideActionAdd:
		// source_item_id is nil only for add; add must carry enough to
		// synthesize an item.
		if input.SourceItemID != nil {
			return ErrInvalidInput
		}
		if input.Title == "" || !models.ValidItemType(input.Type) {
			return ErrInvalidInput
		}
	case models.OverrideActionHide:
		if input.SourceItemID == nil {
			return ErrInvalidInput
		}
	case models.OverrideActionReplace:
		if input.SourceItemID == nil {
			return ErrInvalidInput
		}
		if input.Type != "" && !models.ValidItemType(input.Type) {
			return ErrInvalidInput
		}
	}

	return nil
}
