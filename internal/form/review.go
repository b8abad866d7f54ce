package form

import "strings"

// Placeholder markers submitters type when they do not yet have a real
// value. A draft containing any of them is persisted with
// ready_for_approval=false and cannot be approved until edited.
var needsReviewValues = map[string]bool{
	"NA":       true,
	"N/A":      true,
	"na":       true,
	"1111":     true,
	"1111.00":  true,
	"€1111":    true,
	"€1111.00": true,
}

// ReadyForApproval derives the approval gate once, at submit/edit time,
// instead of re-matching sentinel strings at render time. An ida class of
// "Not sure" always flags the form for review.
func ReadyForApproval(d FormDraft) bool {
	if strings.EqualFold(strings.TrimSpace(d.IDAClass), "not sure") {
		return false
	}

	fields := []string{
		d.TrainingName,
		d.TrainerName,
		d.SupplierName,
		d.LocationDetails,
		d.TrainingDescription,
		d.Notes,
		d.InvoiceNumber,
		d.ConcurClaim,
		d.IDAClass,
		d.CourseCost,
	}
	for _, v := range fields {
		if needsReviewValues[strings.TrimSpace(v)] {
			return false
		}
	}
	return true
}
