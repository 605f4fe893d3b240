package services

import (
	"context"

	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

type dayLister interface {
	ListDays(ctx context.Context, programID int64) ([]models.ProgramDay, error)
}

type itemLister interface {
	ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramItem, error)
}

type overrideLister interface {
	ListByClientProgramID(ctx context.Context, clientProgramID int64) ([]models.ClientProgramItemOverride, error)
}

// ResolveService turns an assignment into the program view the client
// actually sees: the coach's template merged with that assignment's
// overrides, day by day.
type ResolveService struct {
	assignmentRepo assignmentReader
	programRepo    interface {
		programReader
		dayLister
	}
	itemRepo     itemLister
	overrideRepo overrideLister
}

func NewResolveService(
	assignmentRepo *repository.AssignmentRepository,
	programRepo *repository.ProgramRepository,
	itemRepo *repository.ItemRepository,
	overrideRepo *repository.OverrideRepository,
) *ResolveService {
	return &ResolveService{
		assignmentRepo: assignmentRepo,
		programRepo:    programRepo,
		itemRepo:       itemRepo,
		overrideRepo:   overrideRepo,
	}
}

func (s *ResolveService) ResolveClientProgram(
	ctx context.Context,
	actorID int64,
	role string,
	clientProgramID int64,
	opts MergeOptions,
) ([]models.ResolvedDay, error) {
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

	switch role {
	case models.RoleClient:
		if assignment.ClientID != actorID {
			return nil, ErrForbidden
		}
	case models.RoleCoach:
		if program.CoachID != actorID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	days, err := s.programRepo.ListDays(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByProgramID(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrideRepo.ListByClientProgramID(ctx, clientProgramID)
	if err != nil {
		return nil, err
	}

	itemsByDay := make(map[int64][]models.ProgramItem)
	for _, item := range items {
		itemsByDay[item.DayID] = append(itemsByDay[item.DayID], item)
	}

	return MergeProgramDays(days, itemsByDay, overrides, opts), nil
}
