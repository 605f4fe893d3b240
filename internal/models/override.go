package models

import (
	"encoding/json"
	"time"
)

const (
	OverrideActionHide    = "hide"
	OverrideActionReplace = "replace"
	OverrideActionAdd     = "add"
)

func ValidOverrideAction(action string) bool {
	switch action {
	case OverrideActionHide, OverrideActionReplace, OverrideActionAdd:
		return true
	default:
		return false
	}
}

// ClientProgramItemOverride is a per-assignment deviation from the
// template: hide a template item, replace parts of it, or add a
// client-only item. SourceItemID is nil only for the add action.
//
// A SortOrder of exactly 0 on a replace override means "inherit the
// template's order", so an explicit order of 0 cannot be expressed by
// an override. Kept for compatibility with the existing client data.
type ClientProgramItemOverride struct {
	ID              int64           `json:"id"`
	ClientProgramID int64           `json:"client_program_id"`
	ProgramDayID    int64           `json:"program_day_id"`
	SourceItemID    *int64          `json:"source_item_id,omitempty"`
	Action          string          `json:"action"`
	Type            string          `json:"type,omitempty"`
	Title           string          `json:"title,omitempty"`
	Content         json.RawMessage `json:"content,omitempty"`
	SortOrder       int             `json:"sort_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
