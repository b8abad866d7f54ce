package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrainingCatalog is a pre-approved course entry offered to submitters so
// header fields (hours, ida class, cost) can be pre-filled.
type TrainingCatalog struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Area              string          `gorm:"type:varchar(255)" json:"area"`
	TrainingName      string          `gorm:"type:varchar(255)" json:"training_name"`
	QtyStaffAttending string          `gorm:"type:varchar(255)" json:"qty_staff_attending"`
	TrainingDesc      string          `gorm:"type:varchar(500)" json:"training_desc"`
	ChallengeLvl      string          `gorm:"type:varchar(255)" json:"challenge_lvl"`
	SkillImpact       string          `gorm:"type:varchar(255)" json:"skill_impact"`
	EvaluationMethod  string          `gorm:"type:varchar(255)" json:"evaluation_method"`
	IDAClass          string          `gorm:"column:ida_class;type:varchar(255)" json:"ida_class"`
	TrainingType      string          `gorm:"type:varchar(30)" json:"training_type"`
	TrainingHours     float64         `json:"training_hours"`
	SupplierName      string          `gorm:"type:varchar(255)" json:"supplier_name"`
	CourseCost        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"course_cost"`
}

func (TrainingCatalog) TableName() string {
	return "training_catalog"
}
