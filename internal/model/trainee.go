package model

import (
	"time"

	"github.com/google/uuid"
)

// Trainee is a participant on a training form. Every persisted form carries
// at least one.
type Trainee struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID     uuid.UUID `gorm:"type:uuid;not null;index" json:"form_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	Department string    `gorm:"type:varchar(255);not null" json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Trainee) TableName() string {
	return "trainees"
}
