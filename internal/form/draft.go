// Package form holds the draft aggregate a client submits and the pure
// logic that validates it, fans its expense entries out into persistable
// rows, and derives the ready-for-approval flag. Nothing in this package
// touches storage; the service layer feeds it drafts and persists what it
// returns.
package form

import "time"

// DateLayout is the wire format for all draft date fields.
const DateLayout = "2006-01-02"

// FormDraft is the full submission payload: the header plus every child
// collection. The server treats it as the sole source of truth for the
// children: on edit they replace what is stored, never patch it.
// Money and distance fields travel as decimal strings so malformed input
// surfaces as a validation error rather than a decode failure.
type FormDraft struct {
	TrainingType string `json:"training_type"` // Internal Training, External Training
	TrainingName string `json:"training_name"`

	TrainerName       string `json:"trainer_name"`
	TrainerEmail      string `json:"trainer_email"`
	TrainerDepartment string `json:"trainer_department"`
	SupplierName      string `json:"supplier_name"`

	LocationType    string `json:"location_type"` // Onsite, Offsite, Virtual
	LocationDetails string `json:"location_details"`

	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`

	TrainingHours       float64 `json:"training_hours"`
	TrainingDescription string  `json:"training_description"`
	Notes               string  `json:"notes"`
	IDAClass            string  `json:"ida_class"`

	ConcurClaim   string `json:"concur_claim"`
	CourseCost    string `json:"course_cost"`
	InvoiceNumber string `json:"invoice_number"`

	IsDraft bool `json:"is_draft"`

	Trainees         []TraineeEntry  `json:"trainees"`
	TravelExpenses   []TravelEntry   `json:"travel_expenses"`
	MaterialExpenses []MaterialEntry `json:"material_expenses"`
	Attachments      []AttachmentRef `json:"attachments"`
}

// TraineeEntry is one participant in the draft.
type TraineeEntry struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// TravelerRef points a travel entry at a trainer or trainee on the same
// draft. Refs that no longer match anyone are dropped during fan-out.
type TravelerRef struct {
	Type  string `json:"type"` // trainer, trainee
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TravelEntry is a single trip as entered, possibly naming several
// co-travelers. Exactly one of Cost (rail/bus/economy_flight) or
// DistanceKM (mileage) is meaningful, selected by TravelMode.
type TravelEntry struct {
	TravelDate  string        `json:"travel_date"`
	Destination string        `json:"destination"`
	Travelers   []TravelerRef `json:"travelers"`
	TravelMode  string        `json:"travel_mode"`
	Cost        string        `json:"cost"`
	DistanceKM  string        `json:"distance_km"`
	ConcurClaim string        `json:"concur_claim_number"`
}

// MaterialEntry is a course-material purchase in the draft.
type MaterialEntry struct {
	PurchaseDate  string `json:"purchase_date"`
	SupplierName  string `json:"supplier_name"`
	InvoiceNumber string `json:"invoice_number"`
	MaterialCost  string `json:"material_cost"`
	ConcurClaim   string `json:"concur_claim_number"`
}

// AttachmentRef names an uploaded file and its description. The bytes are
// carried separately as multipart parts; the draft only describes them.
type AttachmentRef struct {
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
