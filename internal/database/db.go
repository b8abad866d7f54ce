package database

import (
	"log"

	"trainingforms/internal/model"

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
		&model.TrainingForm{},
		&model.Trainee{},
		&model.TravelExpense{},
		&model.MaterialExpense{},
		&model.Attachment{},
		&model.Admin{},
		&model.Employee{},
		&model.TrainingCatalog{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// SeedInitialAdmin ensures the bootstrap approver exists. Without at least
// one admin nobody can approve forms or add further admins.
func SeedInitialAdmin(db *gorm.DB, email string) error {
	if email == "" {
		return nil
	}
	admin := model.Admin{Email: email, ReceiveEmails: true}
	return db.Where(model.Admin{Email: email}).FirstOrCreate(&admin).Error
}
