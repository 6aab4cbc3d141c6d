package main

import (
	"context"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/rahul4019/Tshirt-store-API/internal/config"
	"github.com/rahul4019/Tshirt-store-API/internal/db"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/repository"
)

// Seeds the initial admin account. Safe to run repeatedly: an existing
// account is promoted to admin instead of duplicated.
func main() {
	log.Println("Starting seed script...")

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	if name == "" {
		name = "Admin"
	}

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up admin account: %v", err)
	}

	if existing != nil {
		existing.Role = model.RoleAdmin
		if err := repo.Update(ctx, existing); err != nil {
			log.Fatalf("Failed to promote existing account: %v", err)
		}
		log.Printf("Existing account %s promoted to admin", email)
		return
	}

	admin := &model.User{
		Name:  name,
		Email: email,
		Role:  model.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	if err := repo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}
	log.Printf("Admin account %s created", email)
}
