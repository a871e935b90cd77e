package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/attendance"
	"github.com/team-rf/roster/internal/auth"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/user"
)

func SetupRoutes(db *gorm.DB, appConfig *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{appConfig.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck(db))

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The provisioner is shared: event creation and player creation both
	// trigger attendance cascades through it.
	provisioner := attendance.NewProvisioner(
		attendance.NewAttendanceRepository(db),
		user.NewUserRepository(db),
		event.NewEventRepository(db),
		appConfig.Attendance.FetchLimit,
	)

	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, appConfig, provisioner)
	user.RegisterUserRoutes(api, db, appConfig, provisioner)
	event.RegisterEventRoutes(api, db, appConfig, provisioner)
	attendance.RegisterAttendanceRoutes(api, db, appConfig)

	return r
}

// healthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Health check failed",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "Backend is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
