package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/repository"
)

type fakeProgramStore struct {
	programs map[int64]*models.Program
	days     map[int64]*models.ProgramDay
	dayList  []models.ProgramDay

	lastLimit  int
	lastOffset int
	labelSet   *string
}

func (s *fakeProgramStore) Create(ctx context.Context, input repository.CreateProgramInput) (*models.Program, error) {
	return nil, errors.New("not expected in unit tests")
}

func (s *fakeProgramStore) GetByID(ctx context.Context, programID int64) (*models.Program, error) {
	program, ok := s.programs[programID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return program, nil
}

func (s *fakeProgramStore) ListByCoachID(ctx context.Context, coachID int64, limit int, offset int) ([]models.Program, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	return []models.Program{}, nil
}

func (s *fakeProgramStore) CountByCoachID(ctx context.Context, coachID int64) (int, error) {
	return 0, nil
}

func (s *fakeProgramStore) Update(ctx context.Context, programID int64, input repository.UpdateProgramInput) (*models.Program, error) {
	program, ok := s.programs[programID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	updated := *program
	updated.Name = input.Name
	updated.Difficulty = input.Difficulty
	return &updated, nil
}

func (s *fakeProgramStore) Delete(ctx context.Context, programID int64) error {
	if _, ok := s.programs[programID]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.programs, programID)
	return nil
}

func (s *fakeProgramStore) ListDays(ctx context.Context, programID int64) ([]models.ProgramDay, error) {
	return s.dayList, nil
}

func (s *fakeProgramStore) GetDayByID(ctx context.Context, dayID int64) (*models.ProgramDay, error) {
	day, ok := s.days[dayID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return day, nil
}

func (s *fakeProgramStore) UpdateDayLabel(ctx context.Context, programID int64, dayNumber int, label *string) (*models.ProgramDay, error) {
	s.labelSet = label
	return &models.ProgramDay{ID: 10, ProgramID: programID, DayNumber: dayNumber, Label: label}, nil
}

type fakeItemStore struct {
	items    map[int64]*models.ProgramItem
	itemList []models.ProgramItem

	nextSortOrder int
	created       *repository.CreateItemInput
	updated       *repository.UpdateItemInput
}

func (s *fakeItemStore) Create(ctx context.Context, input repository.CreateItemInput) (*models.ProgramItem, error) {
	s.created = &input
	return &models.ProgramItem{
		ID:        99,
		DayID:     input.DayID,
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		SortOrder: input.SortOrder,
	}, nil
}

func (s *fakeItemStore) GetByID(ctx context.Context, itemID int64) (*models.ProgramItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return item, nil
}

func (s *fakeItemStore) Update(ctx context.Context, itemID int64, input repository.UpdateItemInput) (*models.ProgramItem, error) {
	s.updated = &input
	return &models.ProgramItem{
		ID:        itemID,
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		SortOrder: input.SortOrder,
	}, nil
}

func (s *fakeItemStore) Delete(ctx context.Context, itemID int64) error {
	if _, ok := s.items[itemID]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.items, itemID)
	return nil
}

func (s *fakeItemStore) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramItem, error) {
	return s.itemList, nil
}

func (s *fakeItemStore) NextSortOrder(ctx context.Context, dayID int64) (int, error) {
	return s.nextSortOrder, nil
}

func newProgramFixture() (*ProgramService, *fakeProgramStore, *fakeItemStore) {
	programs := &fakeProgramStore{
		programs: map[int64]*models.Program{
			1: {ID: 1, CoachID: 5, Name: "Strength Base", Difficulty: 2, DurationWeeks: 1},
		},
		days: map[int64]*models.ProgramDay{
			10: {ID: 10, ProgramID: 1, DayNumber: 1},
		},
		dayList: []models.ProgramDay{
			{ID: 10, ProgramID: 1, DayNumber: 1},
			{ID: 11, ProgramID: 1, DayNumber: 2},
		},
	}
	items := &fakeItemStore{
		items: map[int64]*models.ProgramItem{
			1: {ID: 1, DayID: 10, Type: models.ItemTypeExercise, Title: "Squat", SortOrder: 0},
		},
		itemList: []models.ProgramItem{
			{ID: 1, DayID: 10, Type: models.ItemTypeExercise, Title: "Squat", SortOrder: 0},
		},
	}
	return &ProgramService{programRepo: programs, itemRepo: items}, programs, items
}

func TestCreateProgramRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newProgramFixture()
	ctx := context.Background()
	two := 2
	nine := 9

	tests := []struct {
		name  string
		input CreateProgramInput
	}{
		{"empty name", CreateProgramInput{Name: "  ", Difficulty: 2, DurationWeeks: 4}},
		{"difficulty too low", CreateProgramInput{Name: "P", Difficulty: 0, DurationWeeks: 4}},
		{"difficulty too high", CreateProgramInput{Name: "P", Difficulty: 4, DurationWeeks: 4}},
		{"zero duration", CreateProgramInput{Name: "P", Difficulty: 2, DurationWeeks: 0}},
		{"bad weekday", CreateProgramInput{Name: "P", Difficulty: 2, DurationWeeks: 4, StartWeekday: 7}},
		{"bad days per week", CreateProgramInput{Name: "P", Difficulty: 2, DurationWeeks: 4, DaysPerWeek: &nine}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProgram(ctx, 5, tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := svc.CreateProgram(ctx, 0, CreateProgramInput{Name: "P", Difficulty: 2, DurationWeeks: 4, DaysPerWeek: &two}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero coach, got %v", err)
	}
}

func TestGetProgramGroupsItemsByDay(t *testing.T) {
	svc, _, _ := newProgramFixture()

	detail, err := svc.GetProgram(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if len(detail.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(detail.Days))
	}
	if len(detail.Days[0].Items) != 1 || detail.Days[0].Items[0].Title != "Squat" {
		t.Fatalf("expected squat on day 1, got %+v", detail.Days[0].Items)
	}
	if detail.Days[1].Items == nil || len(detail.Days[1].Items) != 0 {
		t.Fatalf("empty day must serialize as empty list, got %+v", detail.Days[1].Items)
	}
}

func TestGetProgramRequiresOwnership(t *testing.T) {
	svc, _, _ := newProgramFixture()

	if _, err := svc.GetProgram(context.Background(), 6, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetProgram(context.Background(), 5, 99); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestListProgramsComputesOffset(t *testing.T) {
	svc, programs, _ := newProgramFixture()

	if _, _, err := svc.ListPrograms(context.Background(), 5, 3, 10); err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if programs.lastLimit != 10 || programs.lastOffset != 20 {
		t.Fatalf("expected limit 10 offset 20, got limit %d offset %d", programs.lastLimit, programs.lastOffset)
	}
}

func TestAddItemAppendsAfterCurrentMaximum(t *testing.T) {
	svc, _, items := newProgramFixture()
	items.nextSortOrder = 30

	created, err := svc.AddItem(context.Background(), 5, AddItemInput{
		DayID: 10,
		Type:  models.ItemTypeExercise,
		Title: " Deadlift ",
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if created.SortOrder != 30 {
		t.Fatalf("expected appended sort order 30, got %d", created.SortOrder)
	}
	if created.Title != "Deadlift" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
}

func TestAddItemHonorsExplicitSortOrder(t *testing.T) {
	svc, _, items := newProgramFixture()
	items.nextSortOrder = 30
	five := 5

	created, err := svc.AddItem(context.Background(), 5, AddItemInput{
		DayID:     10,
		Type:      models.ItemTypeMeal,
		Title:     "Lunch",
		SortOrder: &five,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if created.SortOrder != 5 {
		t.Fatalf("expected explicit sort order 5, got %d", created.SortOrder)
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc, _, _ := newProgramFixture()
	ctx := context.Background()
	negative := -1

	tests := []struct {
		name  string
		input AddItemInput
	}{
		{"bad type", AddItemInput{DayID: 10, Type: "podcast", Title: "X"}},
		{"empty title", AddItemInput{DayID: 10, Type: models.ItemTypeText, Title: "  "}},
		{"bad json", AddItemInput{DayID: 10, Type: models.ItemTypeText, Title: "X", Content: json.RawMessage(`{"sets":`)}},
		{"negative sort order", AddItemInput{DayID: 10, Type: models.ItemTypeText, Title: "X", SortOrder: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddItem(ctx, 5, tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := svc.AddItem(ctx, 6, AddItemInput{DayID: 10, Type: models.ItemTypeText, Title: "X"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign coach, got %v", err)
	}
}

func TestUpdateItemChangesOnlySuppliedFields(t *testing.T) {
	svc, _, items := newProgramFixture()
	title := "Front Squat"

	updated, err := svc.UpdateItem(context.Background(), 5, 1, UpdateItemInput{Title: &title})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Title != "Front Squat" {
		t.Fatalf("expected new title, got %q", updated.Title)
	}
	if items.updated.Type != models.ItemTypeExercise || items.updated.SortOrder != 0 {
		t.Fatalf("untouched fields must carry over, got %+v", items.updated)
	}
}

func TestSetDayLabelNormalizesBlankToNull(t *testing.T) {
	svc, programs, _ := newProgramFixture()
	blank := "   "

	day, err := svc.SetDayLabel(context.Background(), 5, 1, 1, &blank)
	if err != nil {
		t.Fatalf("SetDayLabel: %v", err)
	}
	if programs.labelSet != nil || day.Label != nil {
		t.Fatalf("blank label must clear the label, got %+v", day.Label)
	}

	label := " Push Day "
	day, err = svc.SetDayLabel(context.Background(), 5, 1, 1, &label)
	if err != nil {
		t.Fatalf("SetDayLabel: %v", err)
	}
	if day.Label == nil || *day.Label != "Push Day" {
		t.Fatalf("expected trimmed label, got %+v", day.Label)
	}
}
