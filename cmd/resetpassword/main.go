// Resets a user's password from the command line.
//
// Usage:
//
//	go run ./cmd/resetpassword -email admin@example.com -password NewSecret123
//
// If -password is omitted a random one is generated and printed.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log"

	"github.com/team-rf/roster/config"
	"github.com/team-rf/roster/internal/user"
	"github.com/team-rf/roster/pkg/utils"
)

func main() {
	email := flag.String("email", "", "email of the user (required)")
	password := flag.String("password", "", "new password (random if omitted)")
	flag.Parse()

	if *email == "" {
		log.Fatal("Missing required -email argument")
	}

	newPassword := *password
	if newPassword == "" {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}
		newPassword = base64.RawURLEncoding.EncodeToString(buf)
	}

	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	repo := user.NewUserRepository(config.DB)
	u, err := repo.GetByEmail(*email)
	if err != nil {
		log.Fatalf("User with email %s not found: %v", *email, err)
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := repo.UpdateFields(u.ID, map[string]interface{}{"password": hashed}); err != nil {
		log.Fatalf("Error resetting password: %v", err)
	}

	log.Println("Password successfully reset.")
	log.Printf("Email: %s", *email)
	log.Printf("New Password: %s", newPassword)
	log.Println("IMPORTANT: Store this password securely and change it after logging in.")
}
