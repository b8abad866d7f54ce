package service

import (
	"context"
	"errors"
	"testing"

	"trainingforms/internal/form"
	"trainingforms/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newApprovalFixture() (ApprovalService, FormService, *mockFormRepo, *mockAuditRepo, *recordingBroadcaster) {
	formRepo := newMockFormRepo()
	auditRepo := &mockAuditRepo{}
	broadcaster := &recordingBroadcaster{}
	formSvc := NewFormService(formRepo, &mockAttachmentRepo{}, auditRepo, mockTxManager{}, newMockStore(), broadcaster, zap.NewNop())
	approvalSvc := NewApprovalService(formRepo, auditRepo, mockTxManager{}, broadcaster, zap.NewNop())
	return approvalSvc, formSvc, formRepo, auditRepo, broadcaster
}

var admin = Identity{Email: "admin@example.com", IsAdmin: true}

func submitForm(t *testing.T, svc FormService, mutate func(*form.FormDraft)) uuid.UUID {
	t.Helper()
	draft := validDraft()
	if mutate != nil {
		mutate(&draft)
	}
	resp, err := svc.SubmitForm(context.Background(), "tom.byrne@example.com", draft)
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	id, _ := uuid.Parse(resp.ID)
	return id
}

func TestApproveRequiresAdmin(t *testing.T) {
	approvalSvc, formSvc, _, _, _ := newApprovalFixture()
	id := submitForm(t, formSvc, nil)

	_, err := approvalSvc.SetApproval(context.Background(), Identity{Email: "tom.byrne@example.com"}, id, true)
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("approval by non-admin = %v, want ErrNotAllowed", err)
	}
}

func TestApproveCleanForm(t *testing.T) {
	approvalSvc, formSvc, _, auditRepo, broadcaster := newApprovalFixture()
	id := submitForm(t, formSvc, nil)

	resp, err := approvalSvc.SetApproval(context.Background(), admin, id, true)
	if err != nil {
		t.Fatalf("SetApproval: %v", err)
	}
	if !resp.Approved {
		t.Error("form should be approved")
	}
	if got := auditRepo.lastAction(); got != model.ActionApproveForm {
		t.Errorf("audit action = %q", got)
	}
	if got := broadcaster.lastEvent(); got != "form_approved" {
		t.Errorf("broadcast event = %q", got)
	}
}

func TestApproveRejectedWhenNeedsChanges(t *testing.T) {
	approvalSvc, formSvc, _, _, _ := newApprovalFixture()
	id := submitForm(t, formSvc, func(d *form.FormDraft) {
		d.InvoiceNumber = "NA"
	})

	_, err := approvalSvc.SetApproval(context.Background(), admin, id, true)
	if !errors.Is(err, ErrNeedsChanges) {
		t.Errorf("got %v, want ErrNeedsChanges", err)
	}

	// Unapproving is still allowed regardless of review state.
	if _, err := approvalSvc.SetApproval(context.Background(), admin, id, false); err != nil {
		t.Errorf("unapprove: %v", err)
	}
}

func TestSoftDeleteClearsApprovalAndHidesForm(t *testing.T) {
	approvalSvc, formSvc, formRepo, _, _ := newApprovalFixture()
	id := submitForm(t, formSvc, nil)

	if _, err := approvalSvc.SetApproval(context.Background(), admin, id, true); err != nil {
		t.Fatalf("SetApproval: %v", err)
	}

	resp, err := approvalSvc.SoftDelete(context.Background(), admin, id)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if !resp.Deleted {
		t.Error("form should be marked deleted")
	}
	if resp.Approved {
		t.Error("soft delete must clear approval")
	}
	if resp.DeletedDatetimestamp == nil {
		t.Error("deletion timestamp missing")
	}

	if _, err := formRepo.FindByID(context.Background(), id, false); err == nil {
		t.Error("deleted form still visible without includeDeleted")
	}
	if _, err := formRepo.FindByID(context.Background(), id, true); err != nil {
		t.Errorf("deleted form not found with includeDeleted: %v", err)
	}

	// Deleted forms never reach the export.
	exported, _ := formRepo.ListApprovedForExport(context.Background())
	if len(exported) != 0 {
		t.Errorf("deleted form leaked into export set")
	}
}

func TestSoftDeleteBySubmitterAllowedByStrangerNot(t *testing.T) {
	approvalSvc, formSvc, _, _, _ := newApprovalFixture()

	id := submitForm(t, formSvc, nil)
	_, err := approvalSvc.SoftDelete(context.Background(), Identity{Email: "stranger@example.com"}, id)
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("delete by stranger = %v, want ErrNotAllowed", err)
	}

	if _, err := approvalSvc.SoftDelete(context.Background(), Identity{Email: "tom.byrne@example.com"}, id); err != nil {
		t.Errorf("delete by submitter: %v", err)
	}
}

func TestRecoverIsAdminOnlyAndClearsDeletion(t *testing.T) {
	approvalSvc, formSvc, formRepo, auditRepo, _ := newApprovalFixture()
	id := submitForm(t, formSvc, nil)

	if _, err := approvalSvc.SoftDelete(context.Background(), admin, id); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	_, err := approvalSvc.Recover(context.Background(), Identity{Email: "tom.byrne@example.com"}, id)
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("recover by submitter = %v, want ErrNotAllowed", err)
	}

	resp, err := approvalSvc.Recover(context.Background(), admin, id)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if resp.Deleted {
		t.Error("recovered form still marked deleted")
	}
	if resp.DeletedDatetimestamp != nil {
		t.Error("deletion timestamp should be cleared")
	}
	if resp.Approved {
		t.Error("recovery must not restore approval")
	}

	if _, err := formRepo.FindByID(context.Background(), id, false); err != nil {
		t.Errorf("recovered form not visible: %v", err)
	}
	if got := auditRepo.lastAction(); got != model.ActionRecoverForm {
		t.Errorf("audit action = %q", got)
	}
}

func TestLifecycleActionsOnMissingForm(t *testing.T) {
	approvalSvc, _, _, _, _ := newApprovalFixture()
	id := uuid.New()

	if _, err := approvalSvc.SetApproval(context.Background(), admin, id, true); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("SetApproval on missing form = %v", err)
	}
	if _, err := approvalSvc.SoftDelete(context.Background(), admin, id); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("SoftDelete on missing form = %v", err)
	}
	if _, err := approvalSvc.Recover(context.Background(), admin, id); !errors.Is(err, ErrFormNotFound) {
		t.Errorf("Recover on missing form = %v", err)
	}
}
