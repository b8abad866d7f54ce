package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialExpense is a course-material purchase tied to a training form.
type MaterialExpense struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"form_id"`
	PurchaseDate  time.Time       `gorm:"type:date;not null" json:"purchase_date"`
	SupplierName  string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	InvoiceNumber string          `gorm:"type:varchar(255);not null" json:"invoice_number"`
	MaterialCost  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"material_cost"`
	ConcurClaim   string          `gorm:"column:concur_claim_number;type:varchar(255)" json:"concur_claim_number"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (MaterialExpense) TableName() string {
	return "material_expenses"
}
