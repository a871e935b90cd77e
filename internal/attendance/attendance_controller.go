package attendance

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/pkg/utils"
	"gorm.io/gorm"
)

// EventResolver looks up the parent event of a record so the lock state can
// be re-checked at write time.
type EventResolver interface {
	GetByID(id uint) (*event.Event, error)
}

// ParentResolver loads a parent together with their linked children for the
// relationship checks.
type ParentResolver interface {
	GetByIDWithChildren(id uint) (*user.User, error)
}

// AttendanceController handles attendance-related HTTP requests.
type AttendanceController struct {
	repo   AttendanceRepository
	events EventResolver
	users  ParentResolver
	limit  int
}

// NewAttendanceController creates a new attendance controller.
func NewAttendanceController(repo AttendanceRepository, events EventResolver, users ParentResolver, fetchLimit int) *AttendanceController {
	if fetchLimit <= 0 {
		fetchLimit = 1000
	}
	return &AttendanceController{repo: repo, events: events, users: users, limit: fetchLimit}
}

// guardedUpdate applies one attendance mutation through the full rule chain:
// policy scope, lock state re-checked at write time, the role/status table,
// and the parent-child relationship. On success the audit fields are stamped
// server-side, overwriting anything the client sent.
func (c *AttendanceController) guardedUpdate(actor common.Actor, record *Attendance, status Status, notes *string) (*Attendance, error) {
	decision := rbac.CanUpdateAttendance(actor.Role, actor.ID)
	if decision.Denied() {
		return nil, rbac.ErrForbidden
	}
	if decision.IsScoped() {
		if playerID, ok := decision.Filter["player_id"].(uint); ok && record.PlayerID != playerID {
			return nil, rbac.ErrForbidden
		}
	}

	// Resolve the event again here rather than trusting an earlier lookup:
	// the lock may have been flipped since. The lock takes precedence over
	// every other rule, so this runs before the relationship check.
	e, err := c.events.GetByID(record.EventID)
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckStatusChange(actor.Role, string(status), e.Locked); err != nil {
		return nil, err
	}

	if actor.Role == rbac.RoleParent {
		parent, err := c.users.GetByIDWithChildren(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("unable to verify parent-child relationship: %w", err)
		}
		if err := rbac.CheckParentChild(parent.ChildIDs(), record.PlayerID); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{
		"status":        status,
		"updated_by_id": actor.ID,
		"updated_at":    time.Now(),
	}
	if notes != nil {
		fields["notes"] = *notes
	}
	if err := c.repo.UpdateFields(record.ID, fields); err != nil {
		return nil, err
	}
	return c.repo.GetByID(record.ID)
}

// filterForParent narrows a fetched record set to the parent's linked
// children. Applied after the read because the child set lives on the parent
// row.
func (c *AttendanceController) filterForParent(parentID uint, records []Attendance) ([]Attendance, error) {
	parent, err := c.users.GetByIDWithChildren(parentID)
	if err != nil {
		return nil, err
	}
	childIDs := parent.ChildIDs()

	filtered := make([]Attendance, 0, len(records))
	for _, r := range records {
		if rbac.CheckParentChild(childIDs, r.PlayerID) == nil {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// GetEventAttendance godoc
// @Summary List attendance for an event
// @Description Players see their own record, parents their children's, staff everything
// @Tags attendance
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse{data=[]Attendance}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id}/attendance [get]
// @Security Bearer
func (c *AttendanceController) GetEventAttendance(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	eventID, err := strconv.ParseUint(ctx.Param("event_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid event ID")
		return
	}

	decision := rbac.CanReadAttendance(actor.Role, actor.ID)
	if decision.Denied() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	records, err := c.repo.List(decision.Filter, uint(eventID), c.limit)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	if actor.Role == rbac.RoleParent {
		records, err = c.filterForParent(actor.ID, records)
		if err != nil {
			utils.InternalErrorJSON(ctx, err)
			return
		}
	}

	utils.SuccessJSON(ctx, http.StatusOK, "Attendance retrieved", records)
}

// UpdateEventAttendance godoc
// @Summary Update attendance for one player at one event
// @Description Set a status for the (event, player) pair, subject to role and lock rules
// @Tags attendance
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param update body UpdateAttendanceRequest true "Target player, status and notes"
// @Success 200 {object} Attendance
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id}/attendance [patch]
// @Security Bearer
func (c *AttendanceController) UpdateEventAttendance(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	eventID, err := strconv.ParseUint(ctx.Param("event_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid event ID")
		return
	}

	var req UpdateAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}
	if !rbac.ValidStatus(string(req.Status)) {
		utils.BadRequestJSON(ctx, "invalid attendance status")
		return
	}

	record, err := c.repo.FindByEventAndPlayer(uint(eventID), req.PlayerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundJSON(ctx, "attendance record")
		} else {
			utils.InternalErrorJSON(ctx, err)
		}
		return
	}

	updated, err := c.guardedUpdate(actor, record, req.Status, req.Notes)
	if err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// BulkUpdate godoc
// @Summary Bulk update attendance records
// @Description Apply independent status updates; items succeed and fail individually
// @Tags attendance
// @Accept json
// @Produce json
// @Param updates body BulkUpdateRequest true "Updates to apply"
// @Success 200 {object} BulkResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /attendance/bulk-update [post]
// @Security Bearer
func (c *AttendanceController) BulkUpdate(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !actor.Role.IsStaff() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	var req BulkUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid updates array")
		return
	}

	resp := BulkResponse{Results: []BulkResult{}, Errors: []BulkError{}}
	for _, item := range req.Updates {
		if item.AttendanceID == 0 || item.Status == "" {
			resp.Errors = append(resp.Errors, BulkError{AttendanceID: item.AttendanceID, Error: "missing attendance_id or status"})
			continue
		}
		if !rbac.ValidStatus(string(item.Status)) {
			resp.Errors = append(resp.Errors, BulkError{AttendanceID: item.AttendanceID, Error: "invalid attendance status"})
			continue
		}

		record, err := c.repo.GetByID(item.AttendanceID)
		if err != nil {
			resp.Errors = append(resp.Errors, BulkError{AttendanceID: item.AttendanceID, Error: "attendance record not found"})
			continue
		}

		updated, err := c.guardedUpdate(actor, record, item.Status, item.Notes)
		if err != nil {
			resp.Errors = append(resp.Errors, BulkError{AttendanceID: item.AttendanceID, Error: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, BulkResult{AttendanceID: item.AttendanceID, Success: true, Data: updated})
	}

	resp.Success = len(resp.Errors) == 0
	resp.Summary = BulkSummary{
		Total:      len(req.Updates),
		Successful: len(resp.Results),
		Failed:     len(resp.Errors),
	}
	ctx.JSON(http.StatusOK, resp)
}

// MarkAll godoc
// @Summary Mark every record of an event
// @Description Set all attendance records of an event to attended or excused
// @Tags attendance
// @Accept json
// @Produce json
// @Param body body MarkAllRequest true "Event, status and optional notes"
// @Success 200 {object} BulkResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /attendance/mark-all [patch]
// @Security Bearer
func (c *AttendanceController) MarkAll(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !actor.Role.IsStaff() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	var req MarkAllRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Missing event_id or status, or status invalid for bulk operation")
		return
	}

	records, err := c.repo.FindByEvent(req.EventID)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	notes := req.Notes
	if notes == "" {
		notes = "Bulk marked as " + string(req.Status)
	}

	resp := BulkResponse{EventID: req.EventID, Status: req.Status, Results: []BulkResult{}, Errors: []BulkError{}}
	for i := range records {
		updated, err := c.guardedUpdate(actor, &records[i], req.Status, &notes)
		if err != nil {
			resp.Errors = append(resp.Errors, BulkError{AttendanceID: records[i].ID, Error: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, BulkResult{AttendanceID: updated.ID, Success: true})
	}

	resp.Success = len(resp.Errors) == 0
	resp.Summary = BulkSummary{
		Total:      len(records),
		Successful: len(resp.Results),
		Failed:     len(resp.Errors),
	}
	ctx.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary Attendance summary grouped by event
// @Tags attendance
// @Produce json
// @Param eventId query int false "Restrict to one event"
// @Success 200 {object} utils.SuccessResponse{data=[]EventSummary}
// @Failure 403 {object} utils.ErrorResponse
// @Router /attendance/summary [get]
// @Security Bearer
func (c *AttendanceController) Summary(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !actor.Role.IsStaff() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	var eventID uint
	if raw := ctx.Query("eventId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequestJSON(ctx, "invalid eventId parameter")
			return
		}
		eventID = uint(parsed)
	}

	records, err := c.repo.List(nil, eventID, c.limit)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	byEvent := make(map[uint]*EventSummary)
	order := []uint{}
	for _, r := range records {
		s, exists := byEvent[r.EventID]
		if !exists {
			s = &EventSummary{
				EventID:   r.EventID,
				EventName: r.Event.Name,
				EventDate: r.Event.Date,
				Counts:    make(map[Status]int),
			}
			byEvent[r.EventID] = s
			order = append(order, r.EventID)
		}
		s.Total++
		s.Counts[r.Status]++
		s.Records = append(s.Records, SummaryRecord{
			ID:          r.ID,
			PlayerID:    r.PlayerID,
			Status:      r.Status,
			Notes:       r.Notes,
			UpdatedByID: r.UpdatedByID,
			UpdatedAt:   r.UpdatedAt,
		})
	}

	summaries := make([]EventSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byEvent[id])
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Attendance summary", summaries)
}

// DeleteAttendance godoc
// @Summary Delete an attendance record
// @Description Admin only; records are normally never deleted
// @Tags attendance
// @Produce json
// @Param attendance_id path int true "Attendance ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /attendance/{attendance_id} [delete]
// @Security Bearer
func (c *AttendanceController) DeleteAttendance(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanDeleteAttendance(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("attendance_id"), 10, 32)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid attendance ID")
		return
	}
	if _, err := c.repo.GetByID(uint(id)); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	if err := c.repo.Delete(uint(id)); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Attendance record deleted", nil)
}

// DebugList godoc
// @Summary Raw attendance listing for troubleshooting
// @Tags debug
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]Attendance}
// @Failure 403 {object} utils.ErrorResponse
// @Router /debug/attendance [get]
// @Security Bearer
func (c *AttendanceController) DebugList(ctx *gin.Context) {
	records, err := c.repo.List(nil, 0, c.limit)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	total, err := c.repo.Count()
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"total":   total,
		"records": records,
	})
}
