package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type CreateOverrideInput struct {
	ClientProgramID int64
	ProgramDayID    int64
	SourceItemID    *int64
	Action          string
	Type            string
	Title           string
	Content         json.RawMessage
	SortOrder       int
}

type UpdateOverrideInput struct {
	Type      string
	Title     string
	Content   json.RawMessage
	SortOrder int
}

type OverrideRepository struct {
	db DBTX
}

func NewOverrideRepository(db DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

const overrideColumns = `id, client_program_id, program_day_id, source_item_id, action, item_type, title, content, sort_order, created_at, updated_at`

func (r *OverrideRepository) Create(
	ctx context.Context,
	input CreateOverrideInput,
) (*models.ClientProgramItemOverride, error) {
	query := `
		INSERT INTO client_program_item_overrides
			(client_program_id, program_day_id, source_item_id, action, item_type, title, content, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + overrideColumns

	row := r.db.QueryRow(
		ctx,
		query,
		input.ClientProgramID,
		input.ProgramDayID,
		input.SourceItemID,
		input.Action,
		input.Type,
		input.Title,
		input.Content,
		input.SortOrder,
	)
	return scanOverride(row)
}

func (r *OverrideRepository) GetByID(ctx context.Context, id int64) (*models.ClientProgramItemOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM client_program_item_overrides WHERE id = $1`
	return scanOverride(r.db.QueryRow(ctx, query, id))
}

func (r *OverrideRepository) Update(
	ctx context.Context,
	id int64,
	input UpdateOverrideInput,
) (*models.ClientProgramItemOverride, error) {
	query := `
		UPDATE client_program_item_overrides
		SET item_type = $2, title = $3, content = $4, sort_order = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + overrideColumns

	row := r.db.QueryRow(ctx, query, id, input.Type, input.Title, input.Content, input.SortOrder)
	return scanOverride(row)
}

func (r *OverrideRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM client_program_item_overrides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *OverrideRepository) ListByClientProgramID(
	ctx context.Context,
	clientProgramID int64,
) ([]models.ClientProgramItemOverride, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM client_program_item_overrides
		WHERE client_program_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, clientProgramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]models.ClientProgramItemOverride, 0)
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, *override)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overrides, nil
}

func scanOverride(row pgx.Row) (*models.ClientProgramItemOverride, error) {
	var override models.ClientProgramItemOverride
	err := row.Scan(
		&override.ID,
		&override.ClientProgramID,
		&override.ProgramDayID,
		&override.SourceItemID,
		&override.Action,
		&override.Type,
		&override.Title,
		&override.Content,
		&override.SortOrder,
		&override.CreatedAt,
		&override.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &override, nil
}
