package database

import (
	"log"
	"os"

	"rptas/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RolePermissionOverride{},
		&model.BuildingRecord{},
		&model.LandRecord{},
		&model.ReviewComment{},
		&model.ReviewHistory{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	seedAdminUser(db)

	return db, nil
}

// seedAdminUser creates the bootstrap admin account on an empty database so
// the first operator can log in and provision the rest.
func seedAdminUser(db *gorm.DB) {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		log.Println("WARNING: Failed to check for admin user:", err)
		return
	}
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("WARNING: Failed to hash admin password:", err)
		return
	}

	admin := model.User{
		Username: "admin",
		FullName: "System Administrator",
		Email:    "admin@rptas.local",
		Password: string(hashed),
		Role:     string(model.RoleAdmin),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Println("WARNING: Failed to seed admin user:", err)
		return
	}
	log.Println("Seeded default admin user")
}
