package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type CreateAssignmentInput struct {
	ClientID  int64
	ProgramID int64
	StartDate time.Time
}

type AssignmentRepository struct {
	db DBTX
}

func NewAssignmentRepository(db DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, client_id, program_id, start_date, is_active, assigned_at`

func (r *AssignmentRepository) Create(
	ctx context.Context,
	input CreateAssignmentInput,
) (*models.ClientProgram, error) {
	query := `
		INSERT INTO client_programs (client_id, program_id, start_date, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING ` + assignmentColumns

	row := r.db.QueryRow(ctx, query, input.ClientID, input.ProgramID, input.StartDate)
	return scanAssignment(row)
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.ClientProgram, error) {
	query := `SELECT ` + assignmentColumns + ` FROM client_programs WHERE id = $1`
	return scanAssignment(r.db.QueryRow(ctx, query, id))
}

// ListActive returns active rows for the pair, most recently assigned
// first. The single-active invariant makes more than one row an
// anomaly; callers are expected to pick the first and flag the rest.
func (r *AssignmentRepository) ListActive(
	ctx context.Context,
	clientID int64,
	programID int64,
) ([]models.ClientProgram, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM client_programs
		WHERE client_id = $1 AND program_id = $2 AND is_active
		ORDER BY assigned_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, clientID, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.ClientProgram, 0)
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// DeactivateActive flips every active row for the pair to inactive and
// reports how many it touched.
func (r *AssignmentRepository) DeactivateActive(
	ctx context.Context,
	clientID int64,
	programID int64,
) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE client_programs SET is_active = false WHERE client_id = $1 AND program_id = $2 AND is_active`,
		clientID,
		programID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeactivateIfActive deactivates the row only when it is still active,
// returning pgx.ErrNoRows otherwise so callers can tell "already
// inactive" from success.
func (r *AssignmentRepository) DeactivateIfActive(ctx context.Context, id int64) error {
	var deactivated int64
	err := r.db.QueryRow(
		ctx,
		`UPDATE client_programs SET is_active = false WHERE id = $1 AND is_active RETURNING id`,
		id,
	).Scan(&deactivated)
	return err
}

func scanAssignment(row pgx.Row) (*models.ClientProgram, error) {
	var assignment models.ClientProgram
	err := row.Scan(
		&assignment.ID,
		&assignment.ClientID,
		&assignment.ProgramID,
		&assignment.StartDate,
		&assignment.IsActive,
		&assignment.AssignedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
