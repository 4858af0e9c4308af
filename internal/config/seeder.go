package config

import (
	"log"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// defaultUsers are created once on an empty users table.
// Development convenience only; rotate the passwords before any real use.
var defaultUsers = []struct {
	Username string
	Password string
	Role     domain.Role
}{
	{"admin", "admin123456", domain.RoleAdmin},
	{"appraiser", "appraiser123", domain.RoleAppraiser},
	{"staff", "staff123456", domain.RoleStaff},
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("Running database seeders...")

	if err := s.seedUsers(); err != nil {
		log.Printf("Warning: user seeder skipped: %v", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// seedUsers seeds one user per role when the table is empty
func (s *Seeder) seedUsers() error {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, u := range defaultUsers {
		hashed, err := password.Hash(u.Password)
		if err != nil {
			return err
		}
		user := &models.User{
			Username: u.Username,
			Password: hashed,
			Role:     string(u.Role),
			IsActive: true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("Seeded user %q (role %s)", u.Username, u.Role)
	}

	return nil
}
