package attendance

import (
	"time"

	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"gorm.io/gorm"
)

// Status of a single player's attendance at a single event. There is no
// transition graph; who may set which value is gated by rbac.CheckStatusChange.
type Status string

const (
	StatusPending   Status = rbac.StatusPending
	StatusAttending Status = rbac.StatusAttending
	StatusDeclined  Status = rbac.StatusDeclined
	StatusAttended  Status = rbac.StatusAttended
	StatusExcused   Status = rbac.StatusExcused
)

// Attendance is one player's record for one event. The composite unique index
// on (event_id, player_id) makes provisioning an upsert-by-key, so the two
// cascade triggers cannot race each other into duplicate rows. UpdatedByID and
// UpdatedAt are audit fields stamped server-side on every guarded write.
type Attendance struct {
	gorm.Model
	EventID     uint        `gorm:"not null;uniqueIndex:idx_event_player" json:"event_id"`
	Event       event.Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	PlayerID    uint        `gorm:"not null;uniqueIndex:idx_event_player" json:"player_id"`
	Status      Status      `gorm:"not null;default:pending" json:"status"`
	Notes       string      `json:"notes,omitempty"`
	UpdatedByID uint        `json:"updated_by_id"`
}

type UpdateAttendanceRequest struct {
	PlayerID uint    `json:"player_id" binding:"required"`
	Status   Status  `json:"status" binding:"required"`
	Notes    *string `json:"notes,omitempty"`
}

type BulkUpdateItem struct {
	AttendanceID uint    `json:"attendance_id"`
	Status       Status  `json:"status"`
	Notes        *string `json:"notes,omitempty"`
}

type BulkUpdateRequest struct {
	Updates []BulkUpdateItem `json:"updates" binding:"required,min=1"`
}

type MarkAllRequest struct {
	EventID uint   `json:"event_id" binding:"required"`
	Status  Status `json:"status" binding:"required,oneof=attended excused"`
	Notes   string `json:"notes,omitempty"`
}

// BulkResult reports the outcome for one item of a bulk operation.
type BulkResult struct {
	AttendanceID uint        `json:"attendance_id"`
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
}

// BulkError reports one failed item of a bulk operation.
type BulkError struct {
	AttendanceID uint   `json:"attendance_id,omitempty"`
	Error        string `json:"error"`
}

// BulkSummary counts outcomes of a bulk operation.
type BulkSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BulkResponse is the envelope of bulk-update and mark-all. Items succeed and
// fail independently; the operation as a whole is never atomic.
type BulkResponse struct {
	Success bool         `json:"success"`
	EventID uint         `json:"event_id,omitempty"`
	Status  Status       `json:"status,omitempty"`
	Results []BulkResult `json:"results"`
	Errors  []BulkError  `json:"errors"`
	Summary BulkSummary  `json:"summary"`
}

// EventSummary aggregates one event's records for the summary endpoint.
type EventSummary struct {
	EventID   uint            `json:"event_id"`
	EventName string          `json:"event_name"`
	EventDate time.Time       `json:"event_date"`
	Total     int             `json:"total"`
	Counts    map[Status]int  `json:"counts"`
	Records   []SummaryRecord `json:"records"`
}

type SummaryRecord struct {
	ID          uint      `json:"id"`
	PlayerID    uint      `json:"player_id"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	UpdatedByID uint      `json:"updated_by_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}
