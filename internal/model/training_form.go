package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrainingType enum constants
const (
	TrainingTypeInternal = "Internal Training"
	TrainingTypeExternal = "External Training"
)

// LocationType enum constants
const (
	LocationOnsite  = "Onsite"
	LocationOffsite = "Offsite"
	LocationVirtual = "Virtual"
)

// TrainingForm is the header row of a training-cost claim. Trainees,
// travel/material expenses and attachments hang off it and are replaced
// wholesale on edit; approval and soft-delete state live only here.
type TrainingForm struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrainingType string    `gorm:"type:varchar(30);not null;index" json:"training_type"` // Internal Training, External Training
	TrainingName string    `gorm:"type:varchar(255);not null" json:"training_name"`

	// Internal training only
	TrainerName       string `gorm:"type:varchar(255)" json:"trainer_name"`
	TrainerEmail      string `gorm:"type:varchar(255)" json:"trainer_email"`
	TrainerDepartment string `gorm:"type:varchar(255)" json:"trainer_department"`

	// External training only
	SupplierName string `gorm:"type:varchar(255)" json:"supplier_name"`

	LocationType    string `gorm:"type:varchar(20);not null" json:"location_type"` // Onsite, Offsite, Virtual
	LocationDetails string `gorm:"type:varchar(500)" json:"location_details"`      // required when Offsite

	StartDate     time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null" json:"end_date"`
	TrainingHours float64   `json:"training_hours"`

	TrainingDescription string `gorm:"type:text;not null" json:"training_description"`
	Notes               string `gorm:"type:text" json:"notes"`
	IDAClass            string `gorm:"column:ida_class;type:varchar(255)" json:"ida_class"`

	ConcurClaim   string          `gorm:"type:varchar(255)" json:"concur_claim"`
	CourseCost    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"course_cost"`
	InvoiceNumber string          `gorm:"type:varchar(255)" json:"invoice_number"`

	Submitter      string    `gorm:"type:varchar(255);index" json:"submitter"`
	SubmissionDate time.Time `gorm:"autoCreateTime" json:"submission_date"`

	// Lifecycle state. ReadyForApproval is derived once per submit/edit and
	// gates the approve transition; Deleted is the soft-delete axis.
	Approved         bool       `gorm:"default:false;index" json:"approved"`
	ReadyForApproval bool       `gorm:"default:true" json:"ready_for_approval"`
	IsDraft          bool       `gorm:"default:false;not null" json:"is_draft"`
	Deleted          bool       `gorm:"default:false;not null;index" json:"deleted"`
	DeletedAt        *time.Time `gorm:"column:deleted_datetimestamp" json:"deleted_datetimestamp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Trainees         []Trainee         `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"trainees,omitempty"`
	TravelExpenses   []TravelExpense   `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"travel_expenses,omitempty"`
	MaterialExpenses []MaterialExpense `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"material_expenses,omitempty"`
	Attachments      []Attachment      `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (TrainingForm) TableName() string {
	return "training_forms"
}
