package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trainingforms/internal/form"
	"trainingforms/internal/model"
	"trainingforms/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newFormFixture() (FormService, *mockFormRepo, *mockAttachmentRepo, *mockAuditRepo, *recordingBroadcaster) {
	formRepo := newMockFormRepo()
	attachmentRepo := &mockAttachmentRepo{}
	auditRepo := &mockAuditRepo{}
	broadcaster := &recordingBroadcaster{}
	svc := NewFormService(formRepo, attachmentRepo, auditRepo, mockTxManager{}, newMockStore(), broadcaster, zap.NewNop())
	return svc, formRepo, attachmentRepo, auditRepo, broadcaster
}

func validDraft() form.FormDraft {
	return form.FormDraft{
		TrainingType:        model.TrainingTypeInternal,
		TrainingName:        "Go Fundamentals",
		TrainerName:         "Jane Murphy",
		TrainerEmail:        "jane.murphy@example.com",
		TrainerDepartment:   "Engineering",
		LocationType:        model.LocationOnsite,
		StartDate:           "2024-01-10",
		EndDate:             "2024-01-12",
		TrainingHours:       8,
		TrainingDescription: "Introduction to Go",
		Trainees: []form.TraineeEntry{
			{Name: "Tom Byrne", Email: "tom.byrne@example.com", Department: "Engineering"},
		},
	}
}

func TestSubmitFormAccepted(t *testing.T) {
	svc, formRepo, _, auditRepo, broadcaster := newFormFixture()

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", validDraft())
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	if !resp.ReadyForApproval {
		t.Error("expected ready_for_approval to be true for a clean draft")
	}
	if resp.Approved {
		t.Error("new form must not start approved")
	}
	if resp.Submitter != "tom.byrne@example.com" {
		t.Errorf("submitter = %q", resp.Submitter)
	}
	if len(resp.Trainees) != 1 {
		t.Fatalf("trainee count = %d, want 1", len(resp.Trainees))
	}

	id, _ := uuid.Parse(resp.ID)
	stored, err := formRepo.FindByID(context.Background(), id, false)
	if err != nil {
		t.Fatalf("stored form not found: %v", err)
	}
	if stored.TrainingName != "Go Fundamentals" {
		t.Errorf("stored training name = %q", stored.TrainingName)
	}
	if got := auditRepo.lastAction(); got != model.ActionSubmitForm {
		t.Errorf("audit action = %q, want %q", got, model.ActionSubmitForm)
	}
	if got := broadcaster.lastEvent(); got != "form_submitted" {
		t.Errorf("broadcast event = %q, want form_submitted", got)
	}
}

func TestSubmitFormExpenseWithoutClaimRejected(t *testing.T) {
	svc, formRepo, _, _, _ := newFormFixture()

	draft := validDraft()
	draft.TravelExpenses = []form.TravelEntry{{
		TravelDate:  "2024-01-10",
		Destination: "Dublin",
		TravelMode:  model.TravelModeRail,
		Cost:        "10.00",
		Travelers: []form.TravelerRef{
			{Type: model.TravelerTypeTrainee, Email: "tom.byrne@example.com", Name: "Tom Byrne"},
		},
	}}

	_, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", draft)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	found := false
	for _, fe := range ve.Result.Errors {
		if fe.Field == "concur_claim" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a concur_claim violation, got %+v", ve.Result.Errors)
	}

	if _, total, _ := formRepo.List(context.Background(), listAllFilter()); total != 0 {
		t.Errorf("rejected draft must not persist anything, found %d forms", total)
	}
}

func TestSubmitFormPlaceholderValuesParkForReview(t *testing.T) {
	svc, _, _, _, _ := newFormFixture()

	draft := validDraft()
	draft.InvoiceNumber = "NA"

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", draft)
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	if resp.ReadyForApproval {
		t.Error("placeholder invoice number must park the form for review")
	}
}

func TestSubmitFormMileageFanOut(t *testing.T) {
	svc, _, _, _, _ := newFormFixture()

	draft := validDraft()
	draft.ConcurClaim = "CC-1001"
	draft.TravelExpenses = []form.TravelEntry{{
		TravelDate:  "2024-01-10",
		Destination: "Cork",
		TravelMode:  model.TravelModeMileage,
		DistanceKM:  "120",
		Travelers: []form.TravelerRef{
			{Type: model.TravelerTypeTrainee, Email: "tom.byrne@example.com", Name: "Tom Byrne"},
			{Type: model.TravelerTypeTrainer, Email: "jane.murphy@example.com", Name: "Jane Murphy"},
		},
	}}

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", draft)
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	if len(resp.TravelExpenses) != 2 {
		t.Fatalf("travel rows = %d, want one per traveler", len(resp.TravelExpenses))
	}
	for _, e := range resp.TravelExpenses {
		if e.Cost != "72.00" {
			t.Errorf("mileage cost = %s, want 72.00", e.Cost)
		}
		if e.DistanceKM != "120.00" {
			t.Errorf("distance = %s, want 120.00 preserved", e.DistanceKM)
		}
	}
}

func TestEditFormRequiresSubmitterOrAdmin(t *testing.T) {
	svc, _, _, _, _ := newFormFixture()

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", validDraft())
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	id, _ := uuid.Parse(resp.ID)

	_, err = svc.EditForm(context.Background(), Identity{Email: "someone.else@example.com"}, id, validDraft())
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("edit by stranger = %v, want ErrNotAllowed", err)
	}

	if _, err := svc.EditForm(context.Background(), Identity{Email: "admin@example.com", IsAdmin: true}, id, validDraft()); err != nil {
		t.Errorf("edit by admin: %v", err)
	}
}

func TestEditFormReplacesChildrenAndKeepsIdentity(t *testing.T) {
	svc, formRepo, _, auditRepo, _ := newFormFixture()

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", validDraft())
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	id, _ := uuid.Parse(resp.ID)

	edited := validDraft()
	edited.TrainingName = "Advanced Go"
	edited.Trainees = []form.TraineeEntry{
		{Name: "Aoife Walsh", Email: "aoife.walsh@example.com", Department: "Finance"},
		{Name: "Sean Kelly", Email: "sean.kelly@example.com", Department: "Finance"},
	}

	updated, err := svc.EditForm(context.Background(), Identity{Email: "tom.byrne@example.com"}, id, edited)
	if err != nil {
		t.Fatalf("EditForm: %v", err)
	}
	if updated.ID != resp.ID {
		t.Errorf("edit changed the form id: %s -> %s", resp.ID, updated.ID)
	}
	if updated.SubmissionDate != resp.SubmissionDate {
		t.Errorf("edit changed the submission date")
	}
	if updated.TrainingName != "Advanced Go" {
		t.Errorf("training name = %q", updated.TrainingName)
	}

	stored, _ := formRepo.FindByID(context.Background(), id, false)
	if len(stored.Trainees) != 2 {
		t.Fatalf("stored trainees = %d, want the replacement set of 2", len(stored.Trainees))
	}
	for _, tr := range stored.Trainees {
		if tr.Email == "tom.byrne@example.com" {
			t.Error("original trainee survived a replacing edit")
		}
	}
	if got := auditRepo.lastAction(); got != model.ActionEditForm {
		t.Errorf("audit action = %q, want %q", got, model.ActionEditForm)
	}
}

func TestEditFormNotFound(t *testing.T) {
	svc, _, _, _, _ := newFormFixture()
	_, err := svc.EditForm(context.Background(), Identity{Email: "x@example.com", IsAdmin: true}, uuid.New(), validDraft())
	if !errors.Is(err, ErrFormNotFound) {
		t.Errorf("got %v, want ErrFormNotFound", err)
	}
}

func TestAddAttachmentStoresBytesAndRow(t *testing.T) {
	svc, _, attachmentRepo, _, _ := newFormFixture()

	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", validDraft())
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	id, _ := uuid.Parse(resp.ID)

	att, err := svc.AddAttachment(context.Background(), Identity{Email: "tom.byrne@example.com"}, id, "cert.pdf", "completion certificate", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if att.Filename != "cert.pdf" {
		t.Errorf("filename = %q", att.Filename)
	}
	rows, _ := attachmentRepo.ListByForm(context.Background(), id)
	if len(rows) != 1 {
		t.Fatalf("attachment rows = %d, want 1", len(rows))
	}
}

func listAllFilter() repository.FormFilter {
	return repository.FormFilter{DeleteStatus: repository.DeleteStatusAll}
}
