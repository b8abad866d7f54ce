package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TravelerType enum constants
const (
	TravelerTypeTrainer = "trainer"
	TravelerTypeTrainee = "trainee"
)

// TravelMode enum constants
const (
	TravelModeMileage       = "mileage"
	TravelModeRail          = "rail"
	TravelModeBus           = "bus"
	TravelModeEconomyFlight = "economy_flight"
)

// MileageRatePerKM is the reimbursement rate applied when converting a
// mileage entry's distance into a cost at persistence time.
var MileageRatePerKM = decimal.NewFromFloat(0.60)

// TravelExpense is one traveler's trip on one date. A multi-traveler entry
// in the submitted draft fans out into one row per traveler; for mileage
// rows Cost holds the derived amount and DistanceKM the figure the user
// entered, which is the only one shown back to them.
type TravelExpense struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"form_id"`
	TravelDate    time.Time       `gorm:"type:date;not null" json:"travel_date"`
	Destination   string          `gorm:"type:varchar(255);not null" json:"destination"`
	TravelerType  string          `gorm:"type:varchar(20);not null" json:"traveler_type"` // trainer, trainee
	TravelerEmail string          `gorm:"type:varchar(255);not null" json:"traveler_email"`
	TravelerName  string          `gorm:"type:varchar(255);not null" json:"traveler_name"`
	TravelMode    string          `gorm:"type:varchar(30);not null" json:"travel_mode"` // mileage, rail, bus, economy_flight
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cost"`
	DistanceKM    decimal.Decimal `gorm:"column:distance_km;type:decimal(10,2);default:0" json:"distance_km"`
	ConcurClaim   string          `gorm:"column:concur_claim_number;type:varchar(255)" json:"concur_claim_number"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (TravelExpense) TableName() string {
	return "travel_expenses"
}
