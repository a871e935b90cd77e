// Seeds demo data and backfills attendance records. On an empty database it
// creates a small roster and two upcoming events; on an existing one it only
// fills in missing (event, player) attendance pairs. Safe to re-run.
package main

import (
	"log"
	"time"

	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/attendance"
	"github.com/team-rf/roster/internal/event"
	"github.com/team-rf/roster/internal/rbac"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/pkg/utils"
)

func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	cfg := config.GetConfig()
	db := config.DB

	if err := db.AutoMigrate(&user.User{}, &user.RefreshToken{}, &event.Event{}, &attendance.Attendance{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	attendanceRepo := attendance.NewAttendanceRepository(db)
	userRepo := user.NewUserRepository(db)
	eventRepo := event.NewEventRepository(db)

	var usersCount, eventsCount int64
	db.Model(&user.User{}).Count(&usersCount)
	db.Model(&event.Event{}).Count(&eventsCount)
	recordsCount, err := attendanceRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count attendance records: %v", err)
	}
	log.Printf("Found %d users, %d events, %d attendance records", usersCount, eventsCount, recordsCount)

	if usersCount == 0 {
		seedUsers(userRepo)
	}
	if eventsCount == 0 {
		seedEvents(eventRepo)
	}

	events, _, err := eventRepo.GetAll(1, cfg.Attendance.FetchLimit, nil)
	if err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	players, err := userRepo.FindActivePlayers(cfg.Attendance.FetchLimit)
	if err != nil {
		log.Fatalf("Failed to load players: %v", err)
	}
	log.Printf("Backfilling over %d events and %d active players", len(events), len(players))

	created := 0
	for _, e := range events {
		for _, p := range players {
			inserted, err := attendanceRepo.Upsert(&attendance.Attendance{
				EventID:     e.ID,
				PlayerID:    p.ID,
				Status:      attendance.StatusPending,
				UpdatedByID: p.ID,
			})
			if err != nil {
				log.Printf("Failed to create attendance for event %d, player %d: %v", e.ID, p.ID, err)
				continue
			}
			if inserted {
				created++
			}
		}
	}

	log.Printf("Created %d attendance records", created)
	log.Println("Seed process completed!")
}

func seedUsers(repo user.UserRepository) {
	type demoUser struct {
		first, last, email, password string
		role                         rbac.Role
	}
	demo := []demoUser{
		{"Alex", "Admin", "admin@example.com", "admin12345", rbac.RoleAdmin},
		{"Tina", "Trainer", "trainer@example.com", "trainer12345", rbac.RoleTrainer},
		{"Pia", "Player", "pia@example.com", "player12345", rbac.RolePlayer},
		{"Pete", "Player", "pete@example.com", "player12345", rbac.RolePlayer},
		{"Paula", "Parent", "parent@example.com", "parent12345", rbac.RoleParent},
	}

	ids := make(map[string]uint)
	for _, d := range demo {
		hashed, err := utils.HashPassword(d.password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", d.email, err)
		}
		u := &user.User{
			FirstName:  d.first,
			LastName:   d.last,
			Email:      d.email,
			Password:   hashed,
			Role:       string(d.role),
			IsApproved: true,
			Active:     true,
		}
		if err := repo.Create(u); err != nil {
			log.Printf("Failed to create user %s: %v", d.email, err)
			continue
		}
		ids[d.email] = u.ID
		log.Printf("Created %s user %s", d.role, d.email)
	}

	if parentID, ok := ids["parent@example.com"]; ok {
		if childID, ok := ids["pia@example.com"]; ok {
			if err := repo.LinkChild(parentID, childID); err != nil {
				log.Printf("Failed to link parent to player: %v", err)
			}
		}
	}
}

func seedEvents(repo event.EventRepository) {
	now := time.Now()
	for _, e := range []*event.Event{
		{Name: "Tuesday practice", Date: now.AddDate(0, 0, 2), Location: "Main field", Type: event.TypePractice},
		{Name: "Season opener", Date: now.AddDate(0, 0, 9), Location: "City stadium", Type: event.TypeGame, Description: "First game of the season"},
	} {
		if err := repo.Create(e); err != nil {
			log.Printf("Failed to create event %q: %v", e.Name, err)
			continue
		}
		log.Printf("Created event %q", e.Name)
	}
}
