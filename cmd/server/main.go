package main

import (
	"log"
	"net/http"

	_ "github.com/rahul4019/Tshirt-store-API/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rahul4019/Tshirt-store-API/internal/auth"
	"github.com/rahul4019/Tshirt-store-API/internal/cache"
	"github.com/rahul4019/Tshirt-store-API/internal/config"
	"github.com/rahul4019/Tshirt-store-API/internal/db"
	"github.com/rahul4019/Tshirt-store-API/internal/handler"
	"github.com/rahul4019/Tshirt-store-API/internal/imagehost"
	"github.com/rahul4019/Tshirt-store-API/internal/mail"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/repository"
	"github.com/rahul4019/Tshirt-store-API/internal/router"
	"github.com/rahul4019/Tshirt-store-API/internal/service"
)

// @title Tshirt Store API
// @version 1.0
// @description User account backend: signup with photo upload, cookie sessions, password reset over email, and admin user management.
// @host localhost:4000
// @BasePath /api/v1
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	images, err := imagehost.NewCloudinary(cfg.CloudinaryURL, cfg.PhotoFolder)
	if err != nil {
		log.Fatalf("cloudinary init: %v", err)
	}
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.CookieTime)
	userService := service.NewUserService(userRepo, images, mailer, cacheClient)

	authHandler := handler.NewAuthHandler(userService, jwtService)
	userHandler := handler.NewUserHandler(userService, jwtService)

	router.Register(e, cfg, authHandler, userHandler)

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "http://localhost:" + cfg.ServerPort
	}
	log.Printf("Swagger documentation available at: %s/swagger/index.html", swaggerHost)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
