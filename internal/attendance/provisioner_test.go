package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"gorm.io/gorm"
)

func testPlayer(id uint, active bool) *user.User {
	return &user.User{
		Model:     gorm.Model{ID: id},
		FirstName: "Player",
		LastName:  "Test",
		Role:      string(rbac.RolePlayer),
		Active:    active,
	}
}

func testEvent(id uint, date time.Time, locked bool) *event.Event {
	return &event.Event{
		Model:    gorm.Model{ID: id},
		Name:     "Training",
		Date:     date,
		Location: "Main field",
		Type:     event.TypePractice,
		Locked:   locked,
	}
}

func TestProvisioner_ForEvent_CreatesOnePendingRecordPerActivePlayer(t *testing.T) {
	events := map[uint]*event.Event{1: testEvent(1, time.Now().Add(24*time.Hour), false)}
	users := &memoryUsers{users: map[uint]*user.User{
		10: testPlayer(10, true),
		11: testPlayer(11, true),
		12: testPlayer(12, false), // inactive, must be skipped
		20: {Model: gorm.Model{ID: 20}, Role: string(rbac.RoleTrainer), Active: true},
	}}
	records := newMemoryRecords(events)
	p := NewProvisioner(records, users, &memoryEvents{events: events}, 1000)

	created, err := p.ForEvent(events[1], 99)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	for _, playerID := range []uint{10, 11} {
		rec := records.byPair(1, playerID)
		require.NotNil(t, rec, "player %d should have a record", playerID)
		assert.Equal(t, StatusPending, rec.Status)
		assert.Equal(t, uint(99), rec.UpdatedByID)
	}
	assert.Nil(t, records.byPair(1, 12), "inactive player must not be provisioned")
	assert.Nil(t, records.byPair(1, 20), "trainer must not be provisioned")
}

func TestProvisioner_ForEvent_UnknownActorFallsBackToEventID(t *testing.T) {
	events := map[uint]*event.Event{5: testEvent(5, time.Now().Add(time.Hour), false)}
	users := &memoryUsers{users: map[uint]*user.User{10: testPlayer(10, true)}}
	records := newMemoryRecords(events)
	p := NewProvisioner(records, users, &memoryEvents{events: events}, 1000)

	_, err := p.ForEvent(events[5], 0)
	require.NoError(t, err)
	rec := records.byPair(5, 10)
	require.NotNil(t, rec)
	assert.Equal(t, uint(5), rec.UpdatedByID)
}

func TestProvisioner_ForEvent_ToleratesPartialFailure(t *testing.T) {
	events := map[uint]*event.Event{1: testEvent(1, time.Now().Add(time.Hour), false)}
	users := &memoryUsers{users: map[uint]*user.User{
		10: testPlayer(10, true),
		11: testPlayer(11, true),
	}}
	records := newMemoryRecords(events)
	records.failing[[2]uint{1, 11}] = true
	p := NewProvisioner(records, users, &memoryEvents{events: events}, 1000)

	created, err := p.ForEvent(events[1], 99)
	require.NoError(t, err, "a per-record failure must not surface")
	assert.Equal(t, 1, created)
	assert.NotNil(t, records.byPair(1, 10))
	assert.Nil(t, records.byPair(1, 11))
}

func TestProvisioner_ForEvent_SkipsExistingPairs(t *testing.T) {
	events := map[uint]*event.Event{1: testEvent(1, time.Now().Add(time.Hour), false)}
	users := &memoryUsers{users: map[uint]*user.User{10: testPlayer(10, true)}}
	records := newMemoryRecords(events)
	_, err := records.Upsert(&Attendance{EventID: 1, PlayerID: 10, Status: StatusAttending, UpdatedByID: 10})
	require.NoError(t, err)

	p := NewProvisioner(records, users, &memoryEvents{events: events}, 1000)
	created, err := p.ForEvent(events[1], 99)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// The existing record is untouched, not reset to pending.
	rec := records.byPair(1, 10)
	require.NotNil(t, rec)
	assert.Equal(t, StatusAttending, rec.Status)
}

func TestProvisioner_ForPlayer_CoversOnlyUpcomingEvents(t *testing.T) {
	now := time.Now()
	events := map[uint]*event.Event{
		1: testEvent(1, now.Add(24*time.Hour), false),
		2: testEvent(2, now.Add(48*time.Hour), false),
		3: testEvent(3, now.Add(-24*time.Hour), false), // already happened
	}
	records := newMemoryRecords(events)
	p := NewProvisioner(records, &memoryUsers{users: map[uint]*user.User{}}, &memoryEvents{events: events}, 1000)

	player := testPlayer(10, true)
	created, err := p.ForPlayer(player, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	assert.NotNil(t, records.byPair(1, 10))
	assert.NotNil(t, records.byPair(2, 10))
	assert.Nil(t, records.byPair(3, 10), "past events must not be provisioned")

	rec := records.byPair(1, 10)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, uint(42), rec.UpdatedByID)
}

func TestProvisioner_ForPlayer_IgnoresNonPlayersAndInactive(t *testing.T) {
	events := map[uint]*event.Event{1: testEvent(1, time.Now().Add(time.Hour), false)}
	records := newMemoryRecords(events)
	p := NewProvisioner(records, &memoryUsers{users: map[uint]*user.User{}}, &memoryEvents{events: events}, 1000)

	trainer := &user.User{Model: gorm.Model{ID: 7}, Role: string(rbac.RoleTrainer), Active: true}
	created, err := p.ForPlayer(trainer, 1)
	require.NoError(t, err)
	assert.Zero(t, created)

	inactive := testPlayer(8, false)
	created, err = p.ForPlayer(inactive, 1)
	require.NoError(t, err)
	assert.Zero(t, created)

	n, _ := records.Count()
	assert.Zero(t, n)
}

func TestProvisioner_BothTriggersYieldSingleRecordPerPair(t *testing.T) {
	now := time.Now()
	events := map[uint]*event.Event{1: testEvent(1, now.Add(time.Hour), false)}
	users := &memoryUsers{users: map[uint]*user.User{10: testPlayer(10, true)}}
	records := newMemoryRecords(events)
	p := NewProvisioner(records, users, &memoryEvents{events: events}, 1000)

	_, err := p.ForEvent(events[1], 1)
	require.NoError(t, err)
	_, err = p.ForPlayer(users.users[10], 1)
	require.NoError(t, err)

	n, _ := records.Count()
	assert.EqualValues(t, 1, n, "the two cascades must collapse to one record per pair")
}
