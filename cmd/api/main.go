package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidstream/internal/config"
	"vidstream/internal/database"
	"vidstream/internal/middleware"
	"vidstream/internal/modules/account"
	"vidstream/internal/modules/auth"
	"vidstream/internal/pkg/token"
	"vidstream/internal/repository"
	"vidstream/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tokens := token.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	uploads := upload.NewStore(cfg.UploadsDir, cfg.StaticBase)

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authService, uploads, cfg)

	accountService := account.NewService(userRepo)
	accountHandler := account.NewHandler(accountService, uploads)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())
	r.Static(cfg.StaticBase, uploads.BaseDir())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			accountHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
