package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type CreateProgramInput struct {
	CoachID       int64
	Name          string
	Tags          []string
	Difficulty    int
	DaysPerWeek   *int
	DurationWeeks int
	StartWeekday  int
	Color         string
}

type UpdateProgramInput struct {
	Name         string
	Tags         []string
	Difficulty   int
	DaysPerWeek  *int
	StartWeekday int
	Color        string
}

type ProgramRepository struct {
	db DBTX
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, coach_id, name, tags, difficulty, days_per_week, duration_weeks, start_weekday, color, created_at, updated_at`

func (r *ProgramRepository) Create(
	ctx context.Context,
	input CreateProgramInput,
) (*models.Program, error) {
	query := `
		INSERT INTO programs (coach_id, name, tags, difficulty, days_per_week, duration_weeks, start_weekday, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + programColumns

	row := r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.Name,
		input.Tags,
		input.Difficulty,
		input.DaysPerWeek,
		input.DurationWeeks,
		input.StartWeekday,
		input.Color,
	)
	return scanProgram(row)
}

// CreateDays creates the full day set for a freshly created program in
// one statement, so readers never observe a partial set.
func (r *ProgramRepository) CreateDays(
	ctx context.Context,
	programID int64,
	count int,
) ([]models.ProgramDay, error) {
	query := `
		INSERT INTO program_days (program_id, day_number)
		SELECT $1, generate_series(1, $2::int)
		RETURNING id, program_id, day_number, label
	`

	rows, err := r.db.Query(ctx, query, programID, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDays(rows)
}

func (r *ProgramRepository) GetByID(ctx context.Context, programID int64) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	return scanProgram(r.db.QueryRow(ctx, query, programID))
}

func (r *ProgramRepository) ListByCoachID(
	ctx context.Context,
	coachID int64,
	limit int,
	offset int,
) ([]models.Program, error) {
	query := `
		SELECT ` + programColumns + `
		FROM programs
		WHERE coach_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, coachID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]models.Program, 0)
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *program)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return programs, nil
}

func (r *ProgramRepository) CountByCoachID(ctx context.Context, coachID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM programs WHERE coach_id = $1`, coachID).
		Scan(&total)
	return total, err
}

func (r *ProgramRepository) Update(
	ctx context.Context,
	programID int64,
	input UpdateProgramInput,
) (*models.Program, error) {
	query := `
		UPDATE programs
		SET name = $2, tags = $3, difficulty = $4, days_per_week = $5, start_weekday = $6, color = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + programColumns

	row := r.db.QueryRow(
		ctx,
		query,
		programID,
		input.Name,
		input.Tags,
		input.Difficulty,
		input.DaysPerWeek,
		input.StartWeekday,
		input.Color,
	)
	return scanProgram(row)
}

// Delete removes the program; days and items go with it via cascade.
func (r *ProgramRepository) Delete(ctx context.Context, programID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, programID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ProgramRepository) ListDays(ctx context.Context, programID int64) ([]models.ProgramDay, error) {
	query := `
		SELECT id, program_id, day_number, label
		FROM program_days
		WHERE program_id = $1
		ORDER BY day_number ASC
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDays(rows)
}

func (r *ProgramRepository) GetDayByID(ctx context.Context, dayID int64) (*models.ProgramDay, error) {
	query := `
		SELECT id, program_id, day_number, label
		FROM program_days
		WHERE id = $1
	`

	var day models.ProgramDay
	err := r.db.QueryRow(ctx, query, dayID).
		Scan(&day.ID, &day.ProgramID, &day.DayNumber, &day.Label)
	if err != nil {
		return nil, err
	}

	return &day, nil
}

func (r *ProgramRepository) UpdateDayLabel(
	ctx context.Context,
	programID int64,
	dayNumber int,
	label *string,
) (*models.ProgramDay, error) {
	query := `
		UPDATE program_days
		SET label = $3
		WHERE program_id = $1 AND day_number = $2
		RETURNING id, program_id, day_number, label
	`

	var day models.ProgramDay
	err := r.db.QueryRow(ctx, query, programID, dayNumber, label).
		Scan(&day.ID, &day.ProgramID, &day.DayNumber, &day.Label)
	if err != nil {
		return nil, err
	}

	return &day, nil
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	var program models.Program
	err := row.Scan(
		&program.ID,
		&program.CoachID,
		&program.Name,
		&program.Tags,
		&program.Difficulty,
		&program.DaysPerWeek,
		&program.DurationWeeks,
		&program.StartWeekday,
		&program.Color,
		&program.CreatedAt,
		&program.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func collectDays(rows pgx.Rows) ([]models.ProgramDay, error) {
	days := make([]models.ProgramDay, 0)
	for rows.Next() {
		var day models.ProgramDay
		if err := rows.Scan(&day.ID, &day.ProgramID, &day.DayNumber, &day.Label); err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}
