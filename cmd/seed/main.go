package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"vidstream/internal/database"
	"vidstream/internal/domain"
	"vidstream/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "vidstream.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM users")

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	demo := []struct {
		username, email, fullName, password string
	}{
		{"alice", "alice@example.com", "Alice Carter", "password123"},
		{"bob", "bob@example.com", "Bob Mitchell", "password123"},
		{"carol", "carol@example.com", "Carol Nguyen", "password123"},
	}

	for _, d := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("hash failed:", err)
		}
		u := &domain.User{
			Username:     d.username,
			Email:        d.email,
			FullName:     d.fullName,
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s failed: %v", d.username, err)
		}
		log.Printf("seeded user id=%d username=%s", u.ID, u.Username)
	}

	log.Println("Seed completed")
}
