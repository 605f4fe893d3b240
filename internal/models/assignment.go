package models

import "time"

// ClientProgram binds one client to one program template. At most one
// row per (client_id, program_id) pair may be active at a time.
type ClientProgram struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	ProgramID  int64     `json:"program_id"`
	StartDate  time.Time `json:"start_date"`
	IsActive   bool      `json:"is_active"`
	AssignedAt time.Time `json:"assigned_at"`
}
