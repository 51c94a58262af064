// Command devtoken mints an access token for local testing and, with -seed,
// mirrors the user into the users table so bookings can reference it.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/config"
	"github.com/seatbook/seatbook-api/internal/pkg/database"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
)

func main() {
	userFlag := flag.String("user", "", "user id (random when empty)")
	role := flag.String("role", jwt.RoleUser, "user, librarian or admin")
	email := flag.String("email", "", "email stored with -seed")
	seed := flag.Bool("seed", false, "insert the user into the database if missing")
	flag.Parse()

	switch *role {
	case jwt.RoleUser, jwt.RoleLibrarian, jwt.RoleAdmin:
	default:
		log.Fatalf("Unknown role %q", *role)
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
		userID = parsed
	}

	cfg := config.Load()

	if *seed {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.ClosePostgres(db)

		if *email == "" {
			*email = userID.String() + "@dev.local"
		}
		_, err = db.Exec(`
			INSERT INTO users (id, email, role) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role
		`, userID, *email, *role)
		if err != nil {
			log.Fatalf("Failed to seed user: %v", err)
		}
	}

	token, err := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL).GenerateAccessToken(userID, *role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("user_id: %s\nrole:    %s\ntoken:   %s\n", userID, *role, token)
}
