package config

import (
	"log"
	"time"

	"nalanda-lms/internal/adapters/persistence/models"
	"nalanda-lms/internal/pkg/password"

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

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user.
// This is for development/testing only; in production create the admin
// through a secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Library Admin",
		Email:    "admin@nalanda.edu",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded admin user: %s", admin.Email)
	return nil
}

// SeedSampleBooks seeds a small starter catalog (dev mode only)
func (s *Seeder) SeedSampleBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	date := func(year, month, day int) time.Time {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}

	books := []*models.Book{
		{Title: "The Go Programming Language", Author: "Alan Donovan", ISBN: "9780134190440", PublicationDate: date(2015, 10, 26), Genre: "Programming", Copies: 5},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", ISBN: "9781449373320", PublicationDate: date(2017, 3, 16), Genre: "Databases", Copies: 3},
		{Title: "A Suitable Boy", Author: "Vikram Seth", ISBN: "9780060786526", PublicationDate: date(1993, 5, 1), Genre: "Fiction", Copies: 2},
	}

	for _, book := range books {
		if err := s.db.Create(book).Error; err != nil {
			return err
		}
	}

	log.Printf("🌱 Seeded %d sample books", len(books))
	return nil
}
