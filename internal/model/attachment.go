package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment records a file stored under uploads/form_<form_id>/. The bytes
// live on disk; this row carries the filename and an optional description.
type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID      uuid.UUID `gorm:"type:uuid;not null;index" json:"form_id"`
	Filename    string    `gorm:"type:varchar(255);not null" json:"filename"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
