package user

import (
	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/middleware"
	"github.com/team-rf/roster/pkg/rmiddleware"
	"gorm.io/gorm"
)

// RegisterUserRoutes wires the user endpoints. All of them require
// authentication; read/update scoping happens in the controller via the
// policy functions.
func RegisterUserRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, provisioner PlayerProvisioner) {
	repo := NewUserRepository(db)
	controller := NewUserController(repo, provisioner)

	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		users.GET("", controller.ListUsers)
		users.POST("", controller.CreateUser)
		users.GET("/me/children", controller.GetMyChildren)
		users.GET("/:user_id", controller.GetUser)
		users.PUT("/:user_id", controller.UpdateUser)
		users.DELETE("/:user_id", rmiddleware.AdminRequired(), controller.DeleteUser)
		users.POST("/:user_id/children", rmiddleware.StaffRequired(), controller.LinkChild)
		users.DELETE("/:user_id/children/:child_id", rmiddleware.StaffRequired(), controller.UnlinkChild)
	}
}
