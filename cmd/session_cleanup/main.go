package main

import (
	"errors"
	"log"

	"github.com/joho/godotenv"

	"vidstream/internal/config"
	"vidstream/internal/database"
	"vidstream/internal/pkg/token"
)

// Clears stored refresh tokens that no longer verify (expired). Sessions are
// a single column on the user row, so cleanup is a scan over users with an
// active session rather than a table sweep.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	tokens := token.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var rows []struct {
		ID           int64
		RefreshToken string
	}
	if err := db.Table("users").
		Select("id, refresh_token").
		Where("refresh_token IS NOT NULL AND refresh_token <> ''").
		Find(&rows).Error; err != nil {
		log.Fatalf("session scan failed: %v", err)
	}

	cleared := 0
	for _, row := range rows {
		_, parseErr := tokens.ParseRefreshToken(row.RefreshToken)
		if parseErr == nil {
			continue
		}
		if !errors.Is(parseErr, token.ErrExpired) {
			// Signature/shape problems are worth a look, not a silent wipe.
			log.Printf("session cleanup: user_id=%d unexpected token state: %v", row.ID, parseErr)
			continue
		}
		// Conditional on the scanned value so a session refreshed mid-scan
		// is left alone.
		res := db.Table("users").
			Where("id = ? AND refresh_token = ?", row.ID, row.RefreshToken).
			Update("refresh_token", nil)
		if res.Error != nil {
			log.Fatalf("session cleanup failed for user_id=%d: %v", row.ID, res.Error)
		}
		cleared += int(res.RowsAffected)
	}

	log.Printf("session cleanup completed: scanned=%d cleared=%d", len(rows), cleared)
}
