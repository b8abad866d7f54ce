package form

import (
	"strings"

	"github.com/shopspring/decimal"

	"trainingforms/internal/model"
)

// ExpandTravelExpenses fans the draft's travel entries out into one row per
// (entry, traveler) pair, carrying the shared trip attributes onto every
// row. For mileage entries the persisted cost is distance × rate while the
// entered distance is kept untouched. Travelers who are no longer on the
// draft (a trainee removed after being selected, or a trainer ref on an
// external training) are dropped; the second return value counts them so
// the caller can log it. Only call with a draft that passed Validate.
func ExpandTravelExpenses(d FormDraft) ([]model.TravelExpense, int) {
	known := knownTravelers(d)

	var rows []model.TravelExpense
	dropped := 0
	for _, e := range d.TravelExpenses {
		date, ok := parseDate(e.TravelDate)
		if !ok {
			continue
		}

		cost := decimal.Zero
		distance := decimal.Zero
		if e.TravelMode == model.TravelModeMileage {
			distance, _ = parseAmount(e.DistanceKM)
			cost = distance.Mul(model.MileageRatePerKM)
		} else {
			cost, _ = parseAmount(e.Cost)
		}

		for _, traveler := range e.Travelers {
			if !known[travelerKey(traveler.Type, traveler.Email)] {
				dropped++
				continue
			}
			rows = append(rows, model.TravelExpense{
				TravelDate:    date,
				Destination:   e.Destination,
				TravelerType:  traveler.Type,
				TravelerEmail: traveler.Email,
				TravelerName:  traveler.Name,
				TravelMode:    e.TravelMode,
				Cost:          cost,
				DistanceKM:    distance,
				ConcurClaim:   firstNonEmpty(e.ConcurClaim, d.ConcurClaim),
			})
		}
	}
	return rows, dropped
}

// BuildMaterialExpenses converts the draft's material entries into rows.
func BuildMaterialExpenses(d FormDraft) []model.MaterialExpense {
	rows := make([]model.MaterialExpense, 0, len(d.MaterialExpenses))
	for _, e := range d.MaterialExpenses {
		date, ok := parseDate(e.PurchaseDate)
		if !ok {
			continue
		}
		cost, _ := parseAmount(e.MaterialCost)
		rows = append(rows, model.MaterialExpense{
			PurchaseDate:  date,
			SupplierName:  e.SupplierName,
			InvoiceNumber: e.InvoiceNumber,
			MaterialCost:  cost,
			ConcurClaim:   firstNonEmpty(e.ConcurClaim, d.ConcurClaim),
		})
	}
	return rows
}

// BuildTrainees converts the draft's trainee entries into rows, defaulting
// the name to the email's local part and the department to Engineering the
// way the legacy picker did.
func BuildTrainees(d FormDraft) []model.Trainee {
	rows := make([]model.Trainee, 0, len(d.Trainees))
	for _, t := range d.Trainees {
		name := t.Name
		if name == "" {
			name, _, _ = strings.Cut(t.Email, "@")
		}
		dept := t.Department
		if dept == "" {
			dept = "Engineering"
		}
		rows = append(rows, model.Trainee{
			Name:       name,
			Email:      t.Email,
			Department: dept,
		})
	}
	return rows
}

// knownTravelers is the set of people a travel entry may reference: every
// trainee on the draft, plus the trainer when the training is internal.
func knownTravelers(d FormDraft) map[string]bool {
	known := make(map[string]bool, len(d.Trainees)+1)
	for _, t := range d.Trainees {
		known[travelerKey(model.TravelerTypeTrainee, t.Email)] = true
	}
	if d.TrainingType == model.TrainingTypeInternal && d.TrainerEmail != "" {
		known[travelerKey(model.TravelerTypeTrainer, d.TrainerEmail)] = true
	}
	return known
}

func travelerKey(travelerType, email string) string {
	return travelerType + ":" + strings.ToLower(email)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
