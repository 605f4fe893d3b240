package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

type CreateItemInput struct {
	DayID     int64
	Type      string
	Title     string
	Content   json.RawMessage
	SortOrder int
}

type UpdateItemInput struct {
	Type      string
	Title     string
	Content   json.RawMessage
	SortOrder int
}

type ItemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, program_day_id, item_type, title, content, sort_order, created_at`

func (r *ItemRepository) Create(
	ctx context.Context,
	input CreateItemInput,
) (*models.ProgramItem, error) {
	query := `
		INSERT INTO program_items (program_day_id, item_type, title, content, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + itemColumns

	row := r.db.QueryRow(
		ctx,
		query,
		input.DayID,
		input.Type,
		input.Title,
		input.Content,
		input.SortOrder,
	)
	return scanItem(row)
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID int64) (*models.ProgramItem, error) {
	query := `SELECT ` + itemColumns + ` FROM program_items WHERE id = $1`
	return scanItem(r.db.QueryRow(ctx, query, itemID))
}

func (r *ItemRepository) Update(
	ctx context.Context,
	itemID int64,
	input UpdateItemInput,
) (*models.ProgramItem, error) {
	query := `
		UPDATE program_items
		SET item_type = $2, title = $3, content = $4, sort_order = $5
		WHERE id = $1
		RETURNING ` + itemColumns

	row := r.db.QueryRow(
		ctx,
		query,
		itemID,
		input.Type,
		input.Title,
		input.Content,
		input.SortOrder,
	)
	return scanItem(row)
}

func (r *ItemRepository) Delete(ctx context.Context, itemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM program_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ItemRepository) ListByDayID(ctx context.Context, dayID int64) ([]models.ProgramItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM program_items
		WHERE program_day_id = $1
		ORDER BY sort_order ASC, id ASC
	`
	return r.list(ctx, query, dayID)
}

// ListByProgramID fetches every item of a program in one round trip,
// ordered day-by-day so resolution stays a single grouped pass.
func (r *ItemRepository) ListByProgramID(ctx context.Context, programID int64) ([]models.ProgramItem, error) {
	query := `
		SELECT i.id, i.program_day_id, i.item_type, i.title, i.content, i.sort_order, i.created_at
		FROM program_items i
		JOIN program_days d ON d.id = i.program_day_id
		WHERE d.program_id = $1
		ORDER BY d.day_number ASC, i.sort_order ASC, i.id ASC
	`
	return r.list(ctx, query, programID)
}

// NextSortOrder implements the append-at-end policy: max existing
// sort_order + 1, or 0 for an empty day.
func (r *ItemRepository) NextSortOrder(ctx context.Context, dayID int64) (int, error) {
	var next int
	err := r.db.QueryRow(
		ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM program_items WHERE program_day_id = $1`,
		dayID,
	).Scan(&next)
	return next, err
}

func (r *ItemRepository) list(
	ctx context.Context,
	query string,
	arg int64,
) ([]models.ProgramItem, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ProgramItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanItem(row pgx.Row) (*models.ProgramItem, error) {
	var item models.ProgramItem
	err := row.Scan(
		&item.ID,
		&item.DayID,
		&item.Type,
		&item.Title,
		&item.Content,
		&item.SortOrder,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
