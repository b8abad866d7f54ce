package model

import "time"

// Admin grants approval rights to an identity-provider email. ReceiveEmails
// is the notification opt-in used by the admin feed.
type Admin struct {
	Email         string    `gorm:"type:varchar(255);primaryKey" json:"email"`
	FirstName     string    `gorm:"type:varchar(255)" json:"first_name"`
	LastName      string    `gorm:"type:varchar(255)" json:"last_name"`
	ReceiveEmails bool      `gorm:"default:true" json:"receive_emails"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}
