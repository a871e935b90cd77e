package event

import (
	"time"

	"gorm.io/gorm"
)

// EventRepository defines all database operations for events.
type EventRepository interface {
	Create(e *Event) error
	GetByID(id uint) (*Event, error)
	GetAll(page, limit int, filters map[string]interface{}) ([]Event, int64, error)
	Update(e *Event) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	SetLocked(id uint, locked bool) (*Event, error)

	// FindUpcoming returns events starting at or after the given instant,
	// bounded by limit. Used by the attendance provisioner when a new player
	// joins.
	FindUpcoming(from time.Time, limit int) ([]Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository backed by gorm.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(e *Event) error {
	return r.db.Create(e).Error
}

func (r *eventRepository) GetByID(id uint) (*Event, error) {
	var e Event
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) GetAll(page, limit int, filters map[string]interface{}) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.db.Model(&Event{})
	for key, value := range filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "locked":
			query = query.Where("locked = ?", value)
		case "from":
			query = query.Where("date >= ?", value)
		case "to":
			query = query.Where("date <= ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("date").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(e *Event) error {
	return r.db.Save(e).Error
}

func (r *eventRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&Event{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) Delete(id uint) error {
	return r.db.Delete(&Event{}, id).Error
}

func (r *eventRepository) SetLocked(id uint, locked bool) (*Event, error) {
	e, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	e.Locked = locked
	if err := r.db.Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) FindUpcoming(from time.Time, limit int) ([]Event, error) {
	var events []Event
	if err := r.db.Where("date >= ?", from).Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
