package event

import (
	"time"

	"gorm.io/gorm"
)

// EventType classifies a team event.
type EventType string

const (
	TypePractice   EventType = "practice"
	TypeGame       EventType = "game"
	TypeTournament EventType = "tournament"
	TypeMeeting    EventType = "meeting"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t EventType) bool {
	switch t {
	case TypePractice, TypeGame, TypeTournament, TypeMeeting:
		return true
	}
	return false
}

// Event is a scheduled team occasion. While Locked is true the event and all
// of its attendance records are frozen for everyone except admins.
type Event struct {
	gorm.Model
	Name        string    `gorm:"not null" json:"name"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Location    string    `gorm:"not null" json:"location"`
	Type        EventType `gorm:"not null;default:practice" json:"type"`
	Description string    `json:"description,omitempty"`
	Locked      bool      `gorm:"not null;default:false" json:"locked"`
}

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Type        EventType `json:"type" binding:"omitempty,oneof=practice game tournament meeting"`
	Description string    `json:"description,omitempty"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Type        *EventType `json:"type,omitempty" binding:"omitempty,oneof=practice game tournament meeting"`
	Description *string    `json:"description,omitempty"`
	Locked      *bool      `json:"locked,omitempty"`
}
