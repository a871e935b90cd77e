package main

import (
	"log"

	"github.com/team-rf/roster/config"
	_ "github.com/team-rf/roster/docs"
	"github.com/team-rf/roster/internal/attendance"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/routes"
)

// @title Team Roster REST API
// @version 1.0
// @description Roster and attendance management server for a sports team.
// @host localhost:3000
// @BasePath /api
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&event.Event{},
		&attendance.Attendance{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes(config.DB, cfg)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
