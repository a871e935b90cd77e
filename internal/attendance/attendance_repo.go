package attendance

import (
	"github.com/team-rf/roster/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository defines all database operations for attendance records.
type AttendanceRepository interface {
	Create(a *Attendance) error

	// Upsert inserts a record unless one already exists for its
	// (event_id, player_id) pair, in which case it is a no-op. Reports
	// whether a row was actually inserted.
	Upsert(a *Attendance) (bool, error)

	GetByID(id uint) (*Attendance, error)
	FindByEvent(eventID uint) ([]Attendance, error)
	FindByEventAndPlayer(eventID, playerID uint) (*Attendance, error)

	// List returns records matching the scoped filter, newest update first,
	// optionally restricted to one event (eventID != 0), with Event preloaded.
	List(filter rbac.Filter, eventID uint, limit int) ([]Attendance, error)

	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	Count() (int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository backed by gorm.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(a *Attendance) error {
	return r.db.Create(a).Error
}

func (r *attendanceRepository) Upsert(a *Attendance) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *attendanceRepository) GetByID(id uint) (*Attendance, error) {
	var a Attendance
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepository) FindByEvent(eventID uint) ([]Attendance, error) {
	var records []Attendance
	err := r.db.Preload("Event").
		Where("event_id = ?", eventID).
		Order("player_id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) FindByEventAndPlayer(eventID, playerID uint) (*Attendance, error) {
	var a Attendance
	err := r.db.Where("event_id = ? AND player_id = ?", eventID, playerID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepository) List(filter rbac.Filter, eventID uint, limit int) ([]Attendance, error) {
	query := r.db.Preload("Event").Model(&Attendance{})
	for column, value := range filter {
		query = query.Where(column+" = ?", value)
	}
	if eventID != 0 {
		query = query.Where("event_id = ?", eventID)
	}

	var records []Attendance
	if err := query.Order("updated_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&Attendance{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepository) Delete(id uint) error {
	return r.db.Delete(&Attendance{}, id).Error
}

func (r *attendanceRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&Attendance{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
