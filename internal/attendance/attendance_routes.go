package attendance

import (
	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/middleware"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/pkg/rmiddleware"
	"gorm.io/gorm"
)

// RegisterAttendanceRoutes wires the attendance endpoints. Everything here
// requires authentication; the finer role rules live in the controller and
// the rbac package.
func RegisterAttendanceRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewAttendanceRepository(db)
	eventRepo := event.NewEventRepository(db)
	userRepo := user.NewUserRepository(db)
	controller := NewAttendanceController(repo, eventRepo, userRepo, appConfig.Attendance.FetchLimit)

	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authed.GET("/events/:event_id/attendance", controller.GetEventAttendance)
		authed.PATCH("/events/:event_id/attendance", controller.UpdateEventAttendance)

		attendanceGroup := authed.Group("/attendance")
		{
			attendanceGroup.POST("/bulk-update", rmiddleware.StaffRequired(), controller.BulkUpdate)
			attendanceGroup.PATCH("/mark-all", rmiddleware.StaffRequired(), controller.MarkAll)
			attendanceGroup.GET("/summary", rmiddleware.StaffRequired(), controller.Summary)
			attendanceGroup.DELETE("/:attendance_id", rmiddleware.AdminRequired(), controller.DeleteAttendance)
		}

		authed.GET("/debug/attendance", rmiddleware.AdminRequired(), controller.DebugList)
	}
}
