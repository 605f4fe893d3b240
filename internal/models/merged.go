package models

// MergedProgramItem is a resolver output row: a template item (or a
// synthesized client-only item) decorated with override provenance.
// Never persisted.
type MergedProgramItem struct {
	ProgramItem
	IsHidden     bool   `json:"is_hidden"`
	IsCustomized bool   `json:"is_customized"`
	IsClientOnly bool   `json:"is_client_only"`
	OverrideID   *int64 `json:"override_id,omitempty"`
}

type ResolvedDay struct {
	ProgramDay
	Items []MergedProgramItem `json:"items"`
}
