package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/middleware"
	"github.com/team-rf/roster/internal/user"
	"gorm.io/gorm"
)

func RegisterAuthRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, provisioner user.PlayerProvisioner) {
	repo := NewAuthRepository(db)
	controller := NewAuthController(repo, provisioner, appConfig)

	authPublic := router.Group("/auth")
	{
		authPublic.POST("/register", controller.Register)
		authPublic.POST("/login", controller.Login)
		authPublic.POST("/refresh-token", controller.RefreshToken)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authProtected.GET("/me", controller.GetProfile)
		authProtected.POST("/change-password", controller.ChangePassword)
	}
}
