package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSubmitForm   = "SUBMIT_FORM"
	ActionEditForm     = "EDIT_FORM"
	ActionApproveForm  = "APPROVE_FORM"
	ActionUnapprove    = "UNAPPROVE_FORM"
	ActionSoftDelete   = "SOFT_DELETE_FORM"
	ActionRecoverForm  = "RECOVER_FORM"
	ActionExportClaim5 = "EXPORT_CLAIM5"
	ActionAddAdmin     = "ADD_ADMIN"
)

// AuditLog tracks who did what and when for lifecycle-changing operations.
// Identity lives in the external provider, so the actor is recorded by email
// rather than a local user foreign key.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorEmail string    `gorm:"type:varchar(255);index" json:"actor_email"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
