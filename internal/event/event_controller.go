package event

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/internal/common"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/pkg/utils"
	"gorm.io/gorm"
)

// AttendanceProvisioner creates attendance records for every active player
// after an event is created. Implemented by the attendance package.
// Per-record failures are handled inside; the returned error only covers the
// player fetch.
type AttendanceProvisioner interface {
	ForEvent(e *Event, actorID uint) (int, error)
}

// EventController handles event-related HTTP requests.
type EventController struct {
	repo        EventRepository
	provisioner AttendanceProvisioner
}

// NewEventController creates a new event controller.
func NewEventController(repo EventRepository, provisioner AttendanceProvisioner) *EventController {
	return &EventController{repo: repo, provisioner: provisioner}
}

// GetAllEvents godoc
// @Summary List events
// @Description Get a paginated list of events with optional filters
// @Tags events
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Param type query string false "Filter by event type"
// @Param from query string false "Only events on or after this RFC3339 instant"
// @Success 200 {object} utils.PaginatedResponse{data=[]Event}
// @Failure 400 {object} utils.ErrorResponse
// @Router /events [get]
func (c *EventController) GetAllEvents(ctx *gin.Context) {
	page, limit := parsePagination(ctx)

	filters := make(map[string]interface{})
	if t := ctx.Query("type"); t != "" {
		if !ValidEventType(EventType(t)) {
			utils.BadRequestJSON(ctx, "invalid event type")
			return
		}
		filters["type"] = t
	}
	if from := ctx.Query("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.BadRequestJSON(ctx, "invalid from parameter, expected RFC3339")
			return
		}
		filters["from"] = ts
	}

	events, total, err := c.repo.GetAll(page, limit, filters)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.PaginatedJSON(ctx, events, page, limit, total)
}

// GetEventByID godoc
// @Summary Get event by ID
// @Tags events
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} Event
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id} [get]
func (c *EventController) GetEventByID(ctx *gin.Context) {
	e, ok := c.eventFromPath(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, e)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event and provision a pending attendance record for every active player
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event details"
// @Success 201 {object} Event
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /events [post]
// @Security Bearer
func (c *EventController) CreateEvent(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanWriteEvents(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}
	if req.Type == "" {
		req.Type = TypePractice
	}

	e := &Event{
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Type:        req.Type,
		Description: req.Description,
	}
	if err := c.repo.Create(e); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	// Cascade: one pending attendance record per active player. Failures are
	// logged and never fail the event creation itself.
	created, err := c.provisioner.ForEvent(e, actor.ID)
	if err != nil {
		log.Printf("event %d: attendance provisioning failed: %v", e.ID, err)
	} else {
		log.Printf("event %d: provisioned %d attendance records", e.ID, created)
	}

	ctx.JSON(http.StatusCreated, e)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Update event fields. A locked event can only be modified by an admin.
// @Tags events
// @Accept json
// @Produce json
// @Param event_id path int true "Event ID"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} Event
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id} [put]
// @Security Bearer
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanWriteEvents(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	stored, ok := c.eventFromPath(ctx)
	if !ok {
		return
	}
	// The stored lock state gates the mutation, not the requested one.
	if err := rbac.CheckEventUpdate(actor.Role, stored.Locked); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}

	var req UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestJSON(ctx, "Invalid input: "+err.Error())
		return
	}

	if req.Name != nil {
		stored.Name = *req.Name
	}
	if req.Date != nil {
		stored.Date = *req.Date
	}
	if req.Location != nil {
		stored.Location = *req.Location
	}
	if req.Type != nil {
		stored.Type = *req.Type
	}
	if req.Description != nil {
		stored.Description = *req.Description
	}
	if req.Locked != nil {
		stored.Locked = *req.Locked
	}

	if err := c.repo.Update(stored); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stored)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event. Locked events cannot be deleted by anyone until unlocked.
// @Tags events
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id} [delete]
// @Security Bearer
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanDeleteEvent(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	stored, ok := c.eventFromPath(ctx)
	if !ok {
		return
	}
	if err := rbac.CheckEventDelete(stored.Locked); err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}

	if err := c.repo.Delete(stored.ID); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Event deleted successfully", nil)
}

// LockEvent godoc
// @Summary Lock an event
// @Description Lock an event to freeze its attendance and protect it from deletion
// @Tags events
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse{data=Event}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id}/lock [post]
// @Security Bearer
func (c *EventController) LockEvent(ctx *gin.Context) {
	c.setLock(ctx, true, "Event locked successfully")
}

// UnlockEvent godoc
// @Summary Unlock an event
// @Description Unlock an event to allow attendance changes and edits again
// @Tags events
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse{data=Event}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /events/{event_id}/lock [delete]
// @Security Bearer
func (c *EventController) UnlockEvent(ctx *gin.Context) {
	c.setLock(ctx, false, "Event unlocked successfully")
}

func (c *EventController) setLock(ctx *gin.Context, locked bool, message string) {
	actor, ok := common.MustActor(ctx)
	if !ok {
		return
	}
	if !rbac.CanLockEvents(actor.Role).Allowed() {
		utils.GuardErrorJSON(ctx, rbac.ErrForbidden)
		return
	}

	eventID, err := eventIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid event ID")
		return
	}

	e, err := c.repo.SetLocked(eventID, locked)
	if err != nil {
		utils.GuardErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, message, e)
}

func (c *EventController) eventFromPath(ctx *gin.Context) (*Event, bool) {
	eventID, err := eventIDFromPath(ctx)
	if err != nil {
		utils.BadRequestJSON(ctx, "invalid event ID")
		return nil, false
	}
	e, err := c.repo.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundJSON(ctx, "event")
		} else {
			utils.InternalErrorJSON(ctx, err)
		}
		return nil, false
	}
	return e, true
}

func eventIDFromPath(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("event_id"), 10, 32)
	return uint(id), err
}

func parsePagination(ctx *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
