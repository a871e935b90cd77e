package event

import (
	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/middleware"
	"gorm.io/gorm"
)

// RegisterEventRoutes wires the event endpoints. Listing and reading are
// public; mutations require authentication and go through the policy checks
// in the controller.
func RegisterEventRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, provisioner AttendanceProvisioner) {
	repo := NewEventRepository(db)
	controller := NewEventController(repo, provisioner)

	public := router.Group("/events")
	{
		public.GET("", controller.GetAllEvents)
		public.GET("/:event_id", controller.GetEventByID)
	}

	protected := router.Group("/events")
	protected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		protected.POST("", controller.CreateEvent)
		protected.PUT("/:event_id", controller.UpdateEvent)
		protected.DELETE("/:event_id", controller.DeleteEvent)
		protected.POST("/:event_id/lock", controller.LockEvent)
		protected.DELETE("/:event_id/lock", controller.UnlockEvent)
	}
}
