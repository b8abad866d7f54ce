package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the directory row backing the trainer/trainee pickers.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName  string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName   string    `gorm:"type:varchar(255);not null" json:"last_name"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Department string    `gorm:"type:varchar(255)" json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// DisplayName renders "First Last" for picker lists.
func (e Employee) DisplayName() string {
	return e.FirstName + " " + e.LastName
}
