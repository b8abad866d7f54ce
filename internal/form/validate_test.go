package form

import (
	"reflect"
	"testing"

	"trainingforms/internal/model"
)

// validDraft returns a minimal internal-training draft that passes every
// rule; tests mutate single fields off it.
func validDraft() FormDraft {
	return FormDraft{
		TrainingType:        model.TrainingTypeInternal,
		TrainingName:        "Go Fundamentals",
		TrainerName:         "Jane Murphy",
		TrainerEmail:        "jane.murphy@example.com",
		TrainerDepartment:   "Engineering",
		LocationType:        model.LocationOnsite,
		StartDate:           "2024-01-01",
		EndDate:             "2024-01-01",
		TrainingHours:       8,
		TrainingDescription: "Introductory Go course",
		IDAClass:            "Class B - Industry Certification",
		Trainees: []TraineeEntry{
			{Name: "Tom Byrne", Email: "tom.byrne@example.com", Department: "Engineering"},
		},
	}
}

func errorOn(r ValidationResult, field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_MinimalInternalDraftAccepted(t *testing.T) {
	r := Validate(validDraft())
	if !r.OK() {
		t.Fatalf("expected valid draft, got errors: %v", r.Errors)
	}
}

func TestValidate_IsIdempotent(t *testing.T) {
	d := validDraft()
	first := Validate(d)
	second := Validate(d)
	if !first.OK() || !second.OK() {
		t.Fatalf("expected both passes to be clean: %v / %v", first.Errors, second.Errors)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-validation changed the result: %v vs %v", first, second)
	}
}

func TestValidate_DateOrdering(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantError bool
	}{
		{"end before start rejected", "2024-03-10", "2024-03-09", true},
		{"same day accepted", "2024-03-10", "2024-03-10", false},
		{"end after start accepted", "2024-03-10", "2024-03-12", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.StartDate = tt.start
			d.EndDate = tt.end
			r := Validate(d)
			if got := errorOn(r, "end_date"); got != tt.wantError {
				t.Errorf("end_date error = %v, want %v (errors: %v)", got, tt.wantError, r.Errors)
			}
		})
	}
}

func TestValidate_EndDateMessage(t *testing.T) {
	d := validDraft()
	d.EndDate = "2023-12-31"
	r := Validate(d)
	want := "End date cannot be earlier than start date"
	found := false
	for _, e := range r.Errors {
		if e.Field == "end_date" && e.Message == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q on end_date, got %v", want, r.Errors)
	}
}

func TestValidate_InternalRequiresTrainer(t *testing.T) {
	d := validDraft()
	d.TrainerName = ""
	r := Validate(d)
	if !errorOn(r, "trainer_name") {
		t.Errorf("expected trainer_name error, got %v", r.Errors)
	}
}

func TestValidate_ExternalRequiresSupplier(t *testing.T) {
	d := validDraft()
	d.TrainingType = model.TrainingTypeExternal
	d.TrainerName = ""
	d.SupplierName = ""
	r := Validate(d)
	if !errorOn(r, "supplier_name") {
		t.Errorf("expected supplier_name error, got %v", r.Errors)
	}

	d.SupplierName = "Acme Training Ltd"
	if r := Validate(d); !r.OK() {
		t.Errorf("expected valid external draft, got %v", r.Errors)
	}
}

func TestValidate_OffsiteRequiresLocationDetails(t *testing.T) {
	d := validDraft()
	d.LocationType = model.LocationOffsite
	d.LocationDetails = ""
	if r := Validate(d); !errorOn(r, "location_details") {
		t.Errorf("expected location_details error, got %v", r.Errors)
	}

	d.LocationDetails = "Radisson Hotel, Galway"
	if r := Validate(d); !r.OK() {
		t.Errorf("expected valid offsite draft, got %v", r.Errors)
	}
}

func TestValidate_VirtualRequiresAttachment(t *testing.T) {
	d := validDraft()
	d.LocationType = model.LocationVirtual
	if r := Validate(d); !errorOn(r, "attachments") {
		t.Errorf("expected attachments error for virtual training, got %v", r.Errors)
	}

	d.Attachments = []AttachmentRef{{Filename: "certificate.pdf"}}
	if r := Validate(d); !r.OK() {
		t.Errorf("expected valid virtual draft, got %v", r.Errors)
	}
}

func TestValidate_TraineesRequiredAtSubmit(t *testing.T) {
	d := validDraft()
	d.Trainees = nil
	r := Validate(d)
	want := "At least one trainee must be added."
	found := false
	for _, e := range r.Errors {
		if e.Field == "trainees" && e.Message == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q, got %v", want, r.Errors)
	}
}

func TestValidate_DraftSkipsTraineeRequirement(t *testing.T) {
	d := validDraft()
	d.Trainees = nil
	d.IsDraft = true
	if r := Validate(d); !r.OK() {
		t.Errorf("expected draft without trainees to pass, got %v", r.Errors)
	}
}

func TestValidate_ExpensesRequireConcurClaim(t *testing.T) {
	d := validDraft()
	d.TravelExpenses = []TravelEntry{{
		TravelDate:  "2024-01-01",
		Destination: "Dublin",
		Travelers:   []TravelerRef{{Type: model.TravelerTypeTrainee, Email: "tom.byrne@example.com", Name: "Tom Byrne"}},
		TravelMode:  model.TravelModeRail,
		Cost:        "10",
	}}
	d.ConcurClaim = ""
	r := Validate(d)
	want := "Concur Claim Number is required when expenses are entered."
	found := false
	for _, e := range r.Errors {
		if e.Field == "concur_claim" && e.Message == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q on concur_claim, got %v", want, r.Errors)
	}

	d.ConcurClaim = "CC-12345"
	if r := Validate(d); !r.OK() {
		t.Errorf("expected valid draft once claim number set, got %v", r.Errors)
	}
}

func TestValidate_TravelEntryRules(t *testing.T) {
	traveler := []TravelerRef{{Type: model.TravelerTypeTrainee, Email: "tom.byrne@example.com", Name: "Tom Byrne"}}
	tests := []struct {
		name      string
		entry     TravelEntry
		wantField string
	}{
		{
			"date outside training period",
			TravelEntry{TravelDate: "2024-02-15", Destination: "Cork", Travelers: traveler, TravelMode: model.TravelModeRail, Cost: "25"},
			"travel_expenses[0].travel_date",
		},
		{
			"missing destination",
			TravelEntry{TravelDate: "2024-01-01", Travelers: traveler, TravelMode: model.TravelModeRail, Cost: "25"},
			"travel_expenses[0].destination",
		},
		{
			"no travelers selected",
			TravelEntry{TravelDate: "2024-01-01", Destination: "Cork", TravelMode: model.TravelModeRail, Cost: "25"},
			"travel_expenses[0].travelers",
		},
		{
			"mileage without distance",
			TravelEntry{TravelDate: "2024-01-01", Destination: "Cork", Travelers: traveler, TravelMode: model.TravelModeMileage},
			"travel_expenses[0].distance_km",
		},
		{
			"mileage with zero distance",
			TravelEntry{TravelDate: "2024-01-01", Destination: "Cork", Travelers: traveler, TravelMode: model.TravelModeMileage, DistanceKM: "0"},
			"travel_expenses[0].distance_km",
		},
		{
			"rail without cost",
			TravelEntry{TravelDate: "2024-01-01", Destination: "Cork", Travelers: traveler, TravelMode: model.TravelModeRail},
			"travel_expenses[0].cost",
		},
		{
			"non-numeric cost is a validation failure",
			TravelEntry{TravelDate: "2024-01-01", Destination: "Cork", Travelers: traveler, TravelMode: model.TravelModeRail, Cost: "abc"},
			"travel_expenses[0].cost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.ConcurClaim = "CC-12345"
			d.TravelExpenses = []TravelEntry{tt.entry}
			r := Validate(d)
			if !errorOn(r, tt.wantField) {
				t.Errorf("expected error on %s, got %v", tt.wantField, r.Errors)
			}
		})
	}
}

func TestValidate_MaterialEntryRules(t *testing.T) {
	tests := []struct {
		name      string
		entry     MaterialEntry
		wantField string
	}{
		{
			"purchase outside training period",
			MaterialEntry{PurchaseDate: "2023-11-01", SupplierName: "Acme", InvoiceNumber: "INV-1", MaterialCost: "50"},
			"material_expenses[0].purchase_date",
		},
		{
			"missing supplier",
			MaterialEntry{PurchaseDate: "2024-01-01", InvoiceNumber: "INV-1", MaterialCost: "50"},
			"material_expenses[0].supplier_name",
		},
		{
			"missing invoice number",
			MaterialEntry{PurchaseDate: "2024-01-01", SupplierName: "Acme", MaterialCost: "50"},
			"material_expenses[0].invoice_number",
		},
		{
			"zero cost",
			MaterialEntry{PurchaseDate: "2024-01-01", SupplierName: "Acme", InvoiceNumber: "INV-1", MaterialCost: "0"},
			"material_expenses[0].material_cost",
		},
		{
			"negative cost",
			MaterialEntry{PurchaseDate: "2024-01-01", SupplierName: "Acme", InvoiceNumber: "INV-1", MaterialCost: "-4"},
			"material_expenses[0].material_cost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.ConcurClaim = "CC-12345"
			d.MaterialExpenses = []MaterialEntry{tt.entry}
			r := Validate(d)
			if !errorOn(r, tt.wantField) {
				t.Errorf("expected error on %s, got %v", tt.wantField, r.Errors)
			}
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	d := FormDraft{} // everything missing
	r := Validate(d)
	if len(r.Errors) < 5 {
		t.Errorf("expected every violation collected, got only %d: %v", len(r.Errors), r.Errors)
	}
}
