package models

import (
	"encoding/json"
	"time"
)

const (
	ItemTypeWorkout  = "workout"
	ItemTypeExercise = "exercise"
	ItemTypeMeal     = "meal"
	ItemTypeVideo    = "video"
	ItemTypeText     = "text"
)

func ValidItemType(itemType string) bool {
	switch itemType {
	case ItemTypeWorkout, ItemTypeExercise, ItemTypeMeal, ItemTypeVideo, ItemTypeText:
		return true
	default:
		return false
	}
}

type Program struct {
	ID            int64     `json:"id"`
	CoachID       int64     `json:"coach_id"`
	Name          string    `json:"name"`
	Tags          []string  `json:"tags"`
	Difficulty    int       `json:"difficulty"`
	DaysPerWeek   *int      `json:"days_per_week,omitempty"`
	DurationWeeks int       `json:"duration_weeks"`
	StartWeekday  int       `json:"start_weekday"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProgramDay struct {
	ID        int64   `json:"id"`
	ProgramID int64   `json:"program_id"`
	DayNumber int     `json:"day_number"`
	Label     *string `json:"label,omitempty"`
}

// ProgramItem is one content unit inside a day. Content is an opaque
// per-type payload (exercise sets, meal foods, a video URL); the engine
// copies it around but never inspects it.
type ProgramItem struct {
	ID        int64           `json:"id"`
	DayID     int64           `json:"program_day_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content,omitempty"`
	SortOrder int             `json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProgramDayDetail struct {
	ProgramDay
	Items []ProgramItem `json:"items"`
}

type ProgramDetail struct {
	Program
	Days []ProgramDayDetail `json:"days"`
}
