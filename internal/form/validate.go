package form

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trainingforms/internal/model"
)

// FieldError scopes one human-readable message to the draft field that
// caused it. Child-collection fields use indexed paths such as
// "travel_expenses[1].destination" so the client can attach the message to
// the offending row.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the ordered batch of everything wrong with a draft.
// An empty batch means the draft may be persisted.
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

// OK reports whether the draft passed every rule.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Validate checks every cross-field rule on the draft and collects all
// violations; rules are evaluated independently, never short-circuited.
// The draft itself is never mutated, so re-validating a valid draft always
// yields the same empty result.
func Validate(d FormDraft) ValidationResult {
	var r ValidationResult

	if d.TrainingType != model.TrainingTypeInternal && d.TrainingType != model.TrainingTypeExternal {
		r.add("training_type", "Please select a training type.")
	}
	if d.TrainingName == "" {
		r.add("training_name", "Training name is required.")
	}
	if d.TrainingDescription == "" {
		r.add("training_description", "Training description is required.")
	}

	switch d.LocationType {
	case model.LocationOnsite, model.LocationVirtual:
	case model.LocationOffsite:
		if d.LocationDetails == "" {
			r.add("location_details", "Location details are required for offsite training.")
		}
	default:
		r.add("location_type", "Please select a location type.")
	}

	start, startOK := parseDate(d.StartDate)
	if !startOK {
		r.add("start_date", "Start date is required (YYYY-MM-DD).")
	}
	end, endOK := parseDate(d.EndDate)
	if !endOK {
		r.add("end_date", "End date is required (YYYY-MM-DD).")
	}
	if startOK && endOK && end.Before(start) {
		r.add("end_date", "End date cannot be earlier than start date")
	}

	if d.TrainingHours < 1.0 {
		r.add("training_hours", "Trainee hours must be positive.")
	}

	switch d.TrainingType {
	case model.TrainingTypeInternal:
		if d.TrainerName == "" {
			r.add("trainer_name", "Trainer name is required for internal training.")
		}
	case model.TrainingTypeExternal:
		if d.SupplierName == "" {
			r.add("supplier_name", "Supplier name is required for external training.")
		}
	}

	if d.LocationType == model.LocationVirtual && len(d.Attachments) == 0 {
		r.add("attachments", "At least one attachment (e.g., certificate) is required for Virtual training.")
	}

	// Drafts may be parked without participants; a real submission needs at
	// least one trainee.
	if !d.IsDraft && len(d.Trainees) == 0 {
		r.add("trainees", "At least one trainee must be added.")
	}
	for i, t := range d.Trainees {
		if t.Email == "" {
			r.add(fmt.Sprintf("trainees[%d].email", i), "Trainee email is required.")
		}
	}

	total := decimal.Zero
	for i, e := range d.TravelExpenses {
		total = total.Add(validateTravelEntry(&r, i, e, start, startOK, end, endOK))
	}
	for i, e := range d.MaterialExpenses {
		total = total.Add(validateMaterialEntry(&r, i, e, start, startOK, end, endOK))
	}
	if cc, ok := parseAmount(d.CourseCost); !ok {
		r.add("course_cost", "Course cost must be a number.")
	} else if cc.IsNegative() {
		r.add("course_cost", "Course cost cannot be negative.")
	}

	if total.IsPositive() && d.ConcurClaim == "" {
		r.add("concur_claim", "Concur Claim Number is required when expenses are entered.")
	}

	return r
}

// validateTravelEntry applies the per-row travel rules and returns the
// amount the row contributes to the expense total (a mileage row counts as
// distance × rate, matching what will be persisted).
func validateTravelEntry(r *ValidationResult, i int, e TravelEntry, start time.Time, startOK bool, end time.Time, endOK bool) decimal.Decimal {
	prefix := fmt.Sprintf("travel_expenses[%d]", i)

	date, dateOK := parseDate(e.TravelDate)
	if !dateOK {
		r.add(prefix+".travel_date", "Travel date is required (YYYY-MM-DD).")
	} else if startOK && endOK && (date.Before(start) || date.After(end)) {
		r.add(prefix+".travel_date", "Travel date must fall within the training period.")
	}

	if e.Destination == "" {
		r.add(prefix+".destination", "Destination is required.")
	}
	if len(e.Travelers) == 0 {
		r.add(prefix+".travelers", "At least one traveler must be selected.")
	}

	switch e.TravelMode {
	case model.TravelModeMileage:
		km, ok := parseAmount(e.DistanceKM)
		if !ok || !km.IsPositive() {
			r.add(prefix+".distance_km", "Distance must be greater than zero for mileage.")
			return decimal.Zero
		}
		return km.Mul(model.MileageRatePerKM).Mul(decimal.NewFromInt(int64(len(e.Travelers))))
	case model.TravelModeRail, model.TravelModeBus, model.TravelModeEconomyFlight:
		cost, ok := parseAmount(e.Cost)
		if !ok || !cost.IsPositive() {
			r.add(prefix+".cost", "Cost must be greater than zero.")
			return decimal.Zero
		}
		return cost.Mul(decimal.NewFromInt(int64(len(e.Travelers))))
	default:
		r.add(prefix+".travel_mode", "Please select a travel mode.")
		return decimal.Zero
	}
}

func validateMaterialEntry(r *ValidationResult, i int, e MaterialEntry, start time.Time, startOK bool, end time.Time, endOK bool) decimal.Decimal {
	prefix := fmt.Sprintf("material_expenses[%d]", i)

	date, dateOK := parseDate(e.PurchaseDate)
	if !dateOK {
		r.add(prefix+".purchase_date", "Purchase date is required (YYYY-MM-DD).")
	} else if startOK && endOK && (date.Before(start) || date.After(end)) {
		r.add(prefix+".purchase_date", "Purchase date must fall within the training period.")
	}

	if e.SupplierName == "" {
		r.add(prefix+".supplier_name", "Supplier name is required.")
	}
	if e.InvoiceNumber == "" {
		r.add(prefix+".invoice_number", "Invoice number is required.")
	}

	cost, ok := parseAmount(e.MaterialCost)
	if !ok || !cost.IsPositive() {
		r.add(prefix+".material_cost", "Material cost must be greater than zero.")
		return decimal.Zero
	}
	return cost
}

// parseAmount reads a decimal string, treating empty as zero. Malformed
// input reports false so callers turn it into a validation error instead
// of failing the request.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
