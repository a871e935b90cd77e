package attendance

import (
	"fmt"
	"sync"
	"time"

	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"gorm.io/gorm"
)

// memoryRecords is an in-memory AttendanceRepository for tests.
type memoryRecords struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]*Attendance
	events  map[uint]*event.Event // for List/FindByEvent preloads
	failing map[[2]uint]bool      // (eventID, playerID) pairs whose upsert fails
}

func newMemoryRecords(events map[uint]*event.Event) *memoryRecords {
	return &memoryRecords{
		records: make(map[uint]*Attendance),
		events:  events,
		failing: make(map[[2]uint]bool),
	}
}

func (m *memoryRecords) Create(a *Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	a.UpdatedAt = time.Now()
	cp := *a
	m.records[a.ID] = &cp
	return nil
}

func (m *memoryRecords) Upsert(a *Attendance) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing[[2]uint{a.EventID, a.PlayerID}] {
		return false, fmt.Errorf("simulated insert failure")
	}
	for _, existing := range m.records {
		if existing.EventID == a.EventID && existing.PlayerID == a.PlayerID {
			return false, nil
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.UpdatedAt = time.Now()
	cp := *a
	m.records[a.ID] = &cp
	return true, nil
}

func (m *memoryRecords) GetByID(id uint) (*Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRecords) FindByEvent(eventID uint) ([]Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attendance
	for _, a := range m.records {
		if a.EventID == eventID {
			cp := *a
			m.attachEvent(&cp)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memoryRecords) FindByEventAndPlayer(eventID, playerID uint) (*Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.records {
		if a.EventID == eventID && a.PlayerID == playerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRecords) List(filter rbac.Filter, eventID uint, limit int) ([]Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attendance
	for _, a := range m.records {
		if eventID != 0 && a.EventID != eventID {
			continue
		}
		if playerID, ok := filter["player_id"].(uint); ok && a.PlayerID != playerID {
			continue
		}
		cp := *a
		m.attachEvent(&cp)
		out = append(out, cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryRecords) UpdateFields(id uint, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		switch column {
		case "status":
			a.Status = value.(Status)
		case "notes":
			a.Notes = value.(string)
		case "updated_by_id":
			a.UpdatedByID = value.(uint)
		case "updated_at":
			a.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (m *memoryRecords) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRecords) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memoryRecords) attachEvent(a *Attendance) {
	if e, ok := m.events[a.EventID]; ok {
		a.Event = *e
	}
}

// byPair returns the record for an (event, player) pair, or nil.
func (m *memoryRecords) byPair(eventID, playerID uint) *Attendance {
	a, err := m.FindByEventAndPlayer(eventID, playerID)
	if err != nil {
		return nil
	}
	return a
}

// memoryEvents implements EventSource and EventResolver.
type memoryEvents struct {
	events map[uint]*event.Event
}

func (m *memoryEvents) GetByID(id uint) (*event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memoryEvents) FindUpcoming(from time.Time, limit int) ([]event.Event, error) {
	var out []event.Event
	for _, e := range m.events {
		if !e.Date.Before(from) {
			out = append(out, *e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// memoryUsers implements PlayerSource and ParentResolver.
type memoryUsers struct {
	users map[uint]*user.User
}

func (m *memoryUsers) FindActivePlayers(limit int) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		if u.Role == string(rbac.RolePlayer) && u.Active {
			out = append(out, *u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryUsers) GetByIDWithChildren(id uint) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}
