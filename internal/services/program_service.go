package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

const daysPerWeek = 7

type programStore interface {
	Create(ctx context.Context, input repository.CreateProgramInput) (*models.Program, error)
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
	ListByCoachID(ctx context.Context, coachID int64, limit int, offset int) ([]models.Program, error)
	CountByCoachID(ctx context.Context, coachID int64) (int, error)
	Update(ctx context.Context, programID int64, input repository.UpdateProgramInput) (*models.Program, error)
	Delete(ctx context.Context, programID int64) error
	ListDays(ctx context.Context, programID int64) ([]models.ProgramDay, error)
	GetDayByID(ctx context.Context, dayID int64) (*models.ProgramDay, error)
	UpdateDayLabel(ctx context.Context, programID int64, dayNumber int, label *string) (*models.ProgramDay, error)
}

type itemStore interface {
	Create(ctx context.Context, input repository.CreateItemInput) (*models.ProgramItem, error)
	GetByID(ctx context.Context, itemID int64) (*models.ProgramItem, error)
	Update(ctx context.Context, itemID int64, input repository.UpdateItemInput) (*models.ProgramItem, error)
	Delete(ctx context.Context, itemID int64) error
	ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramItem, error)
	NextSortOrder(ctx context.Context, dayID int64) (int, error)
}

type ProgramService struct {
	db          *pgxpool.Pool
	programRepo programStore
	itemRepo    itemStore
}

func NewProgramService(
	db *pgxpool.Pool,
	programRepo *repository.ProgramRepository,
	itemRepo *repository.ItemRepository,
) *ProgramService {
	return &ProgramService{
		db:          db,
		programRepo: programRepo,
		itemRepo:    itemRepo,
	}
}

type CreateProgramInput struct {
	Name          string
	Tags          []string
	Difficulty    int
	DaysPerWeek   *int
	DurationWeeks int
	StartWeekday  int
	Color         string
}

// CreateProgram creates the template root plus its complete day set
// (duration_weeks x 7, numbered from 1) in one transaction, so readers
// never see a program with a partial day set.
func (s *ProgramService) CreateProgram(
	ctx context.Context,
	coachID int64,
	input CreateProgramInput,
) (*models.ProgramDetail, error) {
	if coachID <= 0 {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if err := validateProgramFields(input.Difficulty, input.DurationWeeks, input.StartWeekday, input.DaysPerWeek); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txProgramRepo := repository.NewProgramRepository(tx)

	program, err := txProgramRepo.Create(ctx, repository.CreateProgramInput{
		CoachID:       coachID,
		Name:          name,
		Tags:          normalizeTags(input.Tags),
		Difficulty:    input.Difficulty,
		DaysPerWeek:   input.DaysPerWeek,
		DurationWeeks: input.DurationWeeks,
		StartWeekday:  input.StartWeekday,
		Color:         strings.TrimSpace(input.Color),
	})
	if err != nil {
		return nil, err
	}

	days, err := txProgramRepo.CreateDays(ctx, program.ID, input.DurationWeeks*daysPerWeek)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	detail := &models.ProgramDetail{Program: *program}
	for _, day := range days {
		detail.Days = append(detail.Days, models.ProgramDayDetail{
			ProgramDay: day,
			Items:      []models.ProgramItem{},
		})
	}
	return detail, nil
}

func (s *ProgramService) GetProgram(
	ctx context.Context,
	coachID int64,
	programID int64,
) (*models.ProgramDetail, error) {
	program, err := s.ownedProgram(ctx, coachID, programID)
	if err != nil {
		return nil, err
	}

	days, err := s.programRepo.ListDays(ctx, programID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}

	itemsByDay := make(map[int64][]models.ProgramItem)
	for _, item := range items {
		itemsByDay[item.DayID] = append(itemsByDay[item.DayID], item)
	}

	detail := &models.ProgramDetail{Program: *program}
	for _, day := range days {
		dayItems := itemsByDay[day.ID]
		if dayItems == nil {
			dayItems = []models.ProgramItem{}
		}
		detail.Days = append(detail.Days, models.ProgramDayDetail{
			ProgramDay: day,
			Items:      dayItems,
		})
	}
	return detail, nil
}

func (s *ProgramService) ListPrograms(
	ctx context.Context,
	coachID int64,
	page int,
	limit int,
) ([]models.Program, int, error) {
	offset := (page - 1) * limit
	programs, err := s.programRepo.ListByCoachID(ctx, coachID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.programRepo.CountByCoachID(ctx, coachID)
	if err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

type UpdateProgramInput struct {
	Name         string
	Tags         []string
	Difficulty   int
	DaysPerWeek  *int
	StartWeekday int
	Color        string
}

// UpdateProgram edits template metadata. duration_weeks is fixed at
// creation time; changing it would orphan or truncate the day set.
func (s *ProgramService) UpdateProgram(
	ctx context.Context,
	coachID int64,
	programID int64,
	input UpdateProgramInput,
) (*models.Program, error) {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if err := validateProgramFields(input.Difficulty, 1, input.StartWeekday, input.DaysPerWeek); err != nil {
		return nil, err
	}

	return s.programRepo.Update(ctx, programID, repository.UpdateProgramInput{
		Name:         name,
		Tags:         normalizeTags(input.Tags),
		Difficulty:   input.Difficulty,
		DaysPerWeek:  input.DaysPerWeek,
		StartWeekday: input.StartWeekday,
		Color:        strings.TrimSpace(input.Color),
	})
}

func (s *ProgramService) DeleteProgram(ctx context.Context, coachID int64, programID int64) error {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return err
	}
	return s.programRepo.Delete(ctx, programID)
}

func (s *ProgramService) SetDayLabel(
	ctx context.Context,
	coachID int64,
	programID int64,
	dayNumber int,
	label *string,
) (*models.ProgramDay, error) {
	if dayNumber < 1 {
		return nil, ErrInvalidInput
	}
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}
	if label != nil {
		trimmed := strings.TrimSpace(*label)
		if trimmed == "" {
			label = nil
		} else {
			label = &trimmed
		}
	}
	return s.programRepo.UpdateDayLabel(ctx, programID, dayNumber, label)
}

type AddItemInput struct {
	DayID     int64
	Type      string
	Title     string
	Content   json.RawMessage
	SortOrder *int
}

// AddItem appends a content unit to a day. Without an explicit
// sort_order the item lands after the current maximum, keeping the
// authored order intuitive.
func (s *ProgramService) AddItem(
	ctx context.Context,
	coachID int64,
	input AddItemInput,
) (*models.ProgramItem, error) {
	if input.DayID <= 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || !models.ValidItemType(input.Type) {
		return nil, ErrInvalidInput
	}
	if len(input.Content) > 0 && !json.Valid(input.Content) {
		return nil, ErrInvalidInput
	}

	day, err := s.programRepo.GetDayByID(ctx, input.DayID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProgram(ctx, coachID, day.ProgramID); err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		if *input.SortOrder < 0 {
			return nil, ErrInvalidInput
		}
		sortOrder = *input.SortOrder
	} else {
		sortOrder, err = s.itemRepo.NextSortOrder(ctx, input.DayID)
		if err != nil {
			return nil, err
		}
	}

	return s.itemRepo.Create(ctx, repository.CreateItemInput{
		DayID:     input.DayID,
		Type:      input.Type,
		Title:     title,
		Content:   input.Content,
		SortOrder: sortOrder,
	})
}

type UpdateItemInput struct {
	Type      *string
	Title     *string
	Content   json.RawMessage
	SortOrder *int
}

func (s *ProgramService) UpdateItem(
	ctx context.Context,
	coachID int64,
	itemID int64,
	input UpdateItemInput,
) (*models.ProgramItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	day, err := s.programRepo.GetDayByID(ctx, item.DayID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProgram(ctx, coachID, day.ProgramID); err != nil {
		return nil, err
	}

	next := repository.UpdateItemInput{
		Type:      item.Type,
		Title:     item.Title,
		Content:   item.Content,
		SortOrder: item.SortOrder,
	}
	if input.Type != nil {
		if !models.ValidItemType(*input.Type) {
			return nil, ErrInvalidInput
		}
		next.Type = *input.Type
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		next.Title = title
	}
	if len(input.Content) > 0 {
		if !json.Valid(input.Content) {
			return nil, ErrInvalidInput
		}
		next.Content = input.Content
	}
	if input.SortOrder != nil {
		if *input.SortOrder < 0 {
			return nil, ErrInvalidInput
		}
		next.SortOrder = *input.SortOrder
	}

	return s.itemRepo.Update(ctx, itemID, next)
}

func (s *ProgramService) DeleteItem(ctx context.Context, coachID int64, itemID int64) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	day, err := s.programRepo.GetDayByID(ctx, item.DayID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProgram(ctx, coachID, day.ProgramID); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, itemID)
}

func (s *ProgramService) ownedProgram(
	ctx context.Context,
	coachID int64,
	programID int64,
) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrForbidden
	}
	return program, nil
}

func validateProgramFields(difficulty, durationWeeks, startWeekday int, perWeek *int) error {
	if difficulty < 1 || difficulty > 3 {
		return ErrInvalidInput
	}
	if durationWeeks < 1 {
		return ErrInvalidInput
	}
	if startWeekday < 0 || startWeekday > 6 {
		return ErrInvalidInput
	}
	if perWeek != nil && (*perWeek < 1 || *perWeek > 7) {
		return ErrInvalidInput
	}
	return nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
