package attendance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// controllerFixture wires the attendance controller against the in-memory
// fakes with a roster of one trainer, two players and one parent linked to
// player 10.
type controllerFixture struct {
	records *memoryRecords
	events  map[uint]*event.Event
	users   *memoryUsers
	ctrl    *AttendanceController
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	events := map[uint]*event.Event{
		1: testEvent(1, time.Now().Add(24*time.Hour), false),
		2: testEvent(2, time.Now().Add(48*time.Hour), true), // locked
	}
	child := testPlayer(10, true)
	users := &memoryUsers{users: map[uint]*user.User{
		2:  {Model: gorm.Model{ID: 2}, Role: string(rbac.RoleTrainer), Active: true},
		10: child,
		11: testPlayer(11, true),
		30: {Model: gorm.Model{ID: 30}, Role: string(rbac.RoleParent), Active: true, Children: []user.User{*child}},
	}}
	records := newMemoryRecords(events)
	for _, seed := range []*Attendance{
		{EventID: 1, PlayerID: 10, Status: StatusPending, UpdatedByID: 2},
		{EventID: 1, PlayerID: 11, Status: StatusPending, UpdatedByID: 2},
		{EventID: 2, PlayerID: 10, Status: StatusPending, UpdatedByID: 2},
		{EventID: 2, PlayerID: 11, Status: StatusPending, UpdatedByID: 2},
	} {
		require.NoError(t, records.Create(seed))
	}

	ctrl := NewAttendanceController(records, &memoryEvents{events: events}, users, 1000)
	return &controllerFixture{records: records, events: events, users: users, ctrl: ctrl}
}

// router binds the controller's routes behind a middleware that injects the
// given actor, standing in for the JWT auth middleware.
func (f *controllerFixture) router(actor common.Actor) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(common.ContextActorKey, actor)
	})
	r.GET("/events/:event_id/attendance", f.ctrl.GetEventAttendance)
	r.PATCH("/events/:event_id/attendance", f.ctrl.UpdateEventAttendance)
	r.POST("/attendance/bulk-update", f.ctrl.BulkUpdate)
	r.PATCH("/attendance/mark-all", f.ctrl.MarkAll)
	r.GET("/attendance/summary", f.ctrl.Summary)
	r.DELETE("/attendance/:attendance_id", f.ctrl.DeleteAttendance)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateEventAttendance_TrainerMarksAttended(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusAttended})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got Attendance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, StatusAttended, got.Status)
	assert.Equal(t, uint(2), got.UpdatedByID, "audit field must carry the acting trainer")
}

func TestUpdateEventAttendance_PlayerOwnRSVP(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 10, Role: rbac.RolePlayer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusDeclined})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec := f.records.byPair(1, 10)
	assert.Equal(t, StatusDeclined, rec.Status)
	assert.Equal(t, uint(10), rec.UpdatedByID)
}

func TestUpdateEventAttendance_PlayerCannotMarkAttended(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 10, Role: rbac.RolePlayer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusAttended})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusPending, f.records.byPair(1, 10).Status, "record must be unchanged")
}

func TestUpdateEventAttendance_PlayerCannotTouchOtherPlayer(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 10, Role: rbac.RolePlayer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 11, Status: StatusAttending})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, StatusPending, f.records.byPair(1, 11).Status)
}

func TestUpdateEventAttendance_LockedEvent(t *testing.T) {
	f := newControllerFixture(t)

	trainer := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})
	w := doJSON(trainer, http.MethodPatch, "/events/2/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusAttended})
	assert.Equal(t, http.StatusBadRequest, w.Code, "locked event blocks trainers")

	admin := f.router(common.Actor{ID: 1, Role: rbac.RoleAdmin})
	w = doJSON(admin, http.MethodPatch, "/events/2/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusAttended})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, StatusAttended, f.records.byPair(2, 10).Status)
}

func TestUpdateEventAttendance_ParentChildRules(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 30, Role: rbac.RoleParent})

	// Own child: RSVP allowed.
	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusAttending})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Someone else's child: rejected, record untouched.
	w = doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 11, Status: StatusAttending})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusPending, f.records.byPair(1, 11).Status)

	// Parents are limited to RSVP values like players.
	w = doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 10, Status: StatusExcused})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEventAttendance_LockPrecedesRelationshipCheck(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 30, Role: rbac.RoleParent})

	// Player 11 is not the parent's child, but event 2 is locked and the lock
	// is evaluated first.
	w := doJSON(r, http.MethodPatch, "/events/2/attendance", UpdateAttendanceRequest{PlayerID: 11, Status: StatusAttending})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "locked event")
	assert.Equal(t, StatusPending, f.records.byPair(2, 11).Status)
}

func TestUpdateEventAttendance_UnknownPairIs404(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", UpdateAttendanceRequest{PlayerID: 99, Status: StatusAttended})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateEventAttendance_RejectsUnknownStatus(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	w := doJSON(r, http.MethodPatch, "/events/1/attendance", map[string]interface{}{"player_id": 10, "status": "Attending"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "status values are case-sensitive")
}

func listFromResponse(t *testing.T, w *httptest.ResponseRecorder) []Attendance {
	t.Helper()
	var resp struct {
		Data []Attendance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestGetEventAttendance_ScopedReads(t *testing.T) {
	f := newControllerFixture(t)

	trainer := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})
	w := doJSON(trainer, http.MethodGet, "/events/1/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listFromResponse(t, w), 2, "staff see every record")

	player := f.router(common.Actor{ID: 11, Role: rbac.RolePlayer})
	w = doJSON(player, http.MethodGet, "/events/1/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := listFromResponse(t, w)
	require.Len(t, records, 1, "players see only their own record")
	assert.Equal(t, uint(11), records[0].PlayerID)

	parent := f.router(common.Actor{ID: 30, Role: rbac.RoleParent})
	w = doJSON(parent, http.MethodGet, "/events/1/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records = listFromResponse(t, w)
	require.Len(t, records, 1, "parents see only their children")
	assert.Equal(t, uint(10), records[0].PlayerID)
}

func TestBulkUpdate_MixedOutcomes(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	rec1 := f.records.byPair(1, 10) // updatable
	rec3 := f.records.byPair(2, 10) // locked event, trainer fails
	req := BulkUpdateRequest{Updates: []BulkUpdateItem{
		{AttendanceID: rec1.ID, Status: StatusAttended},
		{AttendanceID: rec3.ID, Status: StatusAttended},
		{AttendanceID: 999, Status: StatusAttended},
		{AttendanceID: 0, Status: StatusAttended},
	}}

	w := doJSON(r, http.MethodPost, "/attendance/bulk-update", req)
	require.Equal(t, http.StatusOK, w.Code, "per-item failures never fail the request")

	var resp BulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, BulkSummary{Total: 4, Successful: 1, Failed: 3}, resp.Summary)
	assert.Len(t, resp.Results, 1)
	assert.Len(t, resp.Errors, 3)

	assert.Equal(t, StatusAttended, f.records.byPair(1, 10).Status)
	assert.Equal(t, StatusPending, f.records.byPair(2, 10).Status, "locked record must stay untouched")
}

func TestBulkUpdate_RequiresStaff(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 10, Role: rbac.RolePlayer})

	w := doJSON(r, http.MethodPost, "/attendance/bulk-update", BulkUpdateRequest{Updates: []BulkUpdateItem{{AttendanceID: 1, Status: StatusAttending}}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkAll_DefaultsNotes(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	w := doJSON(r, http.MethodPatch, "/attendance/mark-all", MarkAllRequest{EventID: 1, Status: StatusAttended})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, BulkSummary{Total: 2, Successful: 2, Failed: 0}, resp.Summary)

	for _, playerID := range []uint{10, 11} {
		rec := f.records.byPair(1, playerID)
		assert.Equal(t, StatusAttended, rec.Status)
		assert.Equal(t, "Bulk marked as attended", rec.Notes)
		assert.Equal(t, uint(2), rec.UpdatedByID)
	}
}

func TestMarkAll_RejectsRSVPStatuses(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})

	w := doJSON(r, http.MethodPatch, "/attendance/mark-all", MarkAllRequest{EventID: 1, Status: StatusAttending})
	assert.Equal(t, http.StatusBadRequest, w.Code, "mark-all only accepts attended or excused")
}

func TestSummary_GroupsByEvent(t *testing.T) {
	f := newControllerFixture(t)
	require.NoError(t, f.records.UpdateFields(f.records.byPair(1, 10).ID, map[string]interface{}{"status": StatusAttended}))

	r := f.router(common.Actor{ID: 1, Role: rbac.RoleAdmin})
	w := doJSON(r, http.MethodGet, "/attendance/summary?eventId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []EventSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	s := resp.Data[0]
	assert.Equal(t, uint(1), s.EventID)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Counts[StatusAttended])
	assert.Equal(t, 1, s.Counts[StatusPending])
	assert.Len(t, s.Records, 2)
}

func TestSummary_RequiresStaff(t *testing.T) {
	f := newControllerFixture(t)
	r := f.router(common.Actor{ID: 30, Role: rbac.RoleParent})

	w := doJSON(r, http.MethodGet, "/attendance/summary", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAttendance_AdminOnly(t *testing.T) {
	f := newControllerFixture(t)
	id := f.records.byPair(1, 10).ID

	trainer := f.router(common.Actor{ID: 2, Role: rbac.RoleTrainer})
	w := doJSON(trainer, http.MethodDelete, "/attendance/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := f.router(common.Actor{ID: 1, Role: rbac.RoleAdmin})
	w = doJSON(admin, http.MethodDelete, "/attendance/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err := f.records.GetByID(id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
