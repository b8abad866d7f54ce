package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"trainingforms/internal/form"
	"trainingforms/internal/model"
	"trainingforms/internal/repository"
	"trainingforms/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Identity is the authenticated caller as resolved by the auth middleware.
type Identity struct {
	Email   string
	IsAdmin bool
}

// EventBroadcaster pushes lifecycle events to the admin feed. The websocket
// hub satisfies it; tests swap in a recorder.
type EventBroadcaster interface {
	BroadcastEvent(event websocket.FormEvent)
}

// AttachmentStore persists attachment bytes once the owning form row exists.
type AttachmentStore interface {
	Save(formID uuid.UUID, filename string, r io.Reader) (string, error)
	Path(formID uuid.UUID, filename string) (string, error)
}

// --- DTOs ---

type TraineeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type TravelExpenseResponse struct {
	ID            string `json:"id"`
	TravelDate    string `json:"travel_date"`
	Destination   string `json:"destination"`
	TravelerType  string `json:"traveler_type"`
	TravelerEmail string `json:"traveler_email"`
	TravelerName  string `json:"traveler_name"`
	TravelMode    string `json:"travel_mode"`
	Cost          string `json:"cost"`
	DistanceKM    string `json:"distance_km"`
	ConcurClaim   string `json:"concur_claim_number"`
}

type MaterialExpenseResponse struct {
	ID            string `json:"id"`
	PurchaseDate  string `json:"purchase_date"`
	SupplierName  string `json:"supplier_name"`
	InvoiceNumber string `json:"invoice_number"`
	MaterialCost  string `json:"material_cost"`
	ConcurClaim   string `json:"concur_claim_number"`
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

type FormResponse struct {
	ID                string `json:"id"`
	TrainingType      string `json:"training_type"`
	TrainingName      string `json:"training_name"`
	TrainerName       string `json:"trainer_name"`
	TrainerEmail      string `json:"trainer_email"`
	TrainerDepartment string `json:"trainer_department"`
	SupplierName      string `json:"supplier_name"`
	LocationType      string `json:"location_type"`
	LocationDetails   string `json:"location_details"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`

	TrainingHours       float64 `json:"training_hours"`
	TrainingDescription string  `json:"training_description"`
	Notes               string  `json:"notes"`
	IDAClass            string  `json:"ida_class"`

	ConcurClaim   string `json:"concur_claim"`
	CourseCost    string `json:"course_cost"`
	InvoiceNumber string `json:"invoice_number"`
	TotalExpenses string `json:"total_expenses"`

	Submitter      string `json:"submitter"`
	SubmissionDate string `json:"submission_date"`

	Approved             bool    `json:"approved"`
	ReadyForApproval     bool    `json:"ready_for_approval"`
	IsDraft              bool    `json:"is_draft"`
	Deleted              bool    `json:"deleted"`
	DeletedDatetimestamp *string `json:"deleted_datetimestamp,omitempty"`

	Trainees         []TraineeResponse         `json:"trainees"`
	TravelExpenses   []TravelExpenseResponse   `json:"travel_expenses"`
	MaterialExpenses []MaterialExpenseResponse `json:"material_expenses"`
	Attachments      []AttachmentResponse      `json:"attachments"`
}

// FormSummary is the listing row: header fields plus counts, no children.
type FormSummary struct {
	ID               string `json:"id"`
	TrainingType     string `json:"training_type"`
	TrainingName     string `json:"training_name"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Submitter        string `json:"submitter"`
	SubmissionDate   string `json:"submission_date"`
	Approved         bool   `json:"approved"`
	ReadyForApproval bool   `json:"ready_for_approval"`
	IsDraft          bool   `json:"is_draft"`
	Deleted          bool   `json:"deleted"`
	TraineeCount     int    `json:"trainee_count"`
}

// --- Interface ---

type FormService interface {
	SubmitForm(ctx context.Context, submitter string, draft form.FormDraft) (FormResponse, error)
	EditForm(ctx context.Context, actor Identity, id uuid.UUID, draft form.FormDraft) (FormResponse, error)
	GetForm(ctx context.Context, id uuid.UUID, includeDeleted bool) (FormResponse, error)
	ListForms(ctx context.Context, filter repository.FormFilter) ([]FormSummary, int64, error)
	AddAttachment(ctx context.Context, actor Identity, formID uuid.UUID, filename, description string, r io.Reader) (AttachmentResponse, error)
	ListAttachments(ctx context.Context, formID uuid.UUID) ([]AttachmentResponse, error)
	AttachmentPath(ctx context.Context, formID uuid.UUID, filename string) (string, error)
}

type formService struct {
	formRepo       repository.FormRepository
	attachmentRepo repository.AttachmentRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	store          AttachmentStore
	broadcaster    EventBroadcaster
	logger         *zap.Logger
}

func NewFormService(
	formRepo repository.FormRepository,
	attachmentRepo repository.AttachmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	store AttachmentStore,
	broadcaster EventBroadcaster,
	logger *zap.Logger,
) FormService {
	return &formService{
		formRepo:       formRepo,
		attachmentRepo: attachmentRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		store:          store,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// --- Implementation ---

func (s *formService) SubmitForm(ctx context.Context, submitter string, draft form.FormDraft) (FormResponse, error) {
	if result := form.Validate(draft); !result.OK() {
		return FormResponse{}, &ValidationError{Result: result}
	}

	header, err := buildHeader(draft)
	if err != nil {
		return FormResponse{}, err
	}
	header.Submitter = submitter
	header.ReadyForApproval = form.ReadyForApproval(draft)

	header.Trainees = form.BuildTrainees(draft)
	travel, dropped := form.ExpandTravelExpenses(draft)
	header.TravelExpenses = travel
	header.MaterialExpenses = form.BuildMaterialExpenses(draft)
	if dropped > 0 {
		s.logger.Warn("dropped travel entries naming unknown travelers",
			zap.Int("dropped", dropped),
			zap.String("submitter", submitter))
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.formRepo.Create(txCtx, &header); createErr != nil {
			return fmt.Errorf("failed to create form: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"training_type":      header.TrainingType,
			"training_name":      header.TrainingName,
			"is_draft":           header.IsDraft,
			"ready_for_approval": header.ReadyForApproval,
			"trainee_count":      len(header.Trainees),
		})
		audit := &model.AuditLog{
			ActorEmail: submitter,
			Action:     model.ActionSubmitForm,
			EntityID:   header.ID.String(),
			EntityName: header.TrainingName,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return FormResponse{}, err
	}

	s.broadcaster.BroadcastEvent(websocket.FormEvent{
		Event:        "form_submitted",
		FormID:       header.ID.String(),
		TrainingName: header.TrainingName,
		Submitter:    submitter,
		Actor:        submitter,
		OccurredAt:   time.Now(),
	})

	s.logger.Info("form submitted",
		zap.String("form_id", header.ID.String()),
		zap.String("submitter", submitter),
		zap.Bool("ready_for_approval", header.ReadyForApproval))

	return toFormResponse(header), nil
}

func (s *formService) EditForm(ctx context.Context, actor Identity, id uuid.UUID, draft form.FormDraft) (FormResponse, error) {
	existing, err := s.formRepo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormNotFound
		}
		return FormResponse{}, fmt.Errorf("failed to load form: %w", err)
	}
	if !actor.IsAdmin && actor.Email != existing.Submitter {
		return FormResponse{}, ErrNotAllowed
	}

	// Stored attachments satisfy the attachment requirement for Virtual
	// training even when the edit uploads nothing new.
	for _, a := range existing.Attachments {
		draft.Attachments = append(draft.Attachments, form.AttachmentRef{
			Filename:    a.Filename,
			Description: a.Description,
		})
	}

	if result := form.Validate(draft); !result.OK() {
		return FormResponse{}, &ValidationError{Result: result}
	}

	updated, err := buildHeader(draft)
	if err != nil {
		return FormResponse{}, err
	}
	// Identity and lifecycle state carry over; the edit replaces content only.
	updated.ID = existing.ID
	updated.Submitter = existing.Submitter
	updated.SubmissionDate = existing.SubmissionDate
	updated.Approved = existing.Approved
	updated.CreatedAt = existing.CreatedAt
	updated.ReadyForApproval = form.ReadyForApproval(draft)

	trainees := form.BuildTrainees(draft)
	travel, dropped := form.ExpandTravelExpenses(draft)
	materials := form.BuildMaterialExpenses(draft)
	if dropped > 0 {
		s.logger.Warn("dropped travel entries naming unknown travelers",
			zap.Int("dropped", dropped),
			zap.String("form_id", id.String()))
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.formRepo.Update(txCtx, &updated); updateErr != nil {
			return fmt.Errorf("failed to update form: %w", updateErr)
		}
		if replErr := s.formRepo.ReplaceTrainees(txCtx, id, trainees); replErr != nil {
			return fmt.Errorf("failed to replace trainees: %w", replErr)
		}
		if replErr := s.formRepo.ReplaceTravelExpenses(txCtx, id, travel); replErr != nil {
			return fmt.Errorf("failed to replace travel expenses: %w", replErr)
		}
		if replErr := s.formRepo.ReplaceMaterialExpenses(txCtx, id, materials); replErr != nil {
			return fmt.Errorf("failed to replace material expenses: %w", replErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"training_name":      updated.TrainingName,
			"ready_for_approval": updated.ReadyForApproval,
			"trainee_count":      len(trainees),
		})
		audit := &model.AuditLog{
			ActorEmail: actor.Email,
			Action:     model.ActionEditForm,
			EntityID:   id.String(),
			EntityName: updated.TrainingName,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return FormResponse{}, err
	}

	s.broadcaster.BroadcastEvent(websocket.FormEvent{
		Event:        "form_edited",
		FormID:       id.String(),
		TrainingName: updated.TrainingName,
		Submitter:    updated.Submitter,
		Actor:        actor.Email,
		OccurredAt:   time.Now(),
	})

	reloaded, err := s.formRepo.FindByID(ctx, id, false)
	if err != nil {
		return FormResponse{}, fmt.Errorf("failed to reload form: %w", err)
	}
	return toFormResponse(*reloaded), nil
}

func (s *formService) GetForm(ctx context.Context, id uuid.UUID, includeDeleted bool) (FormResponse, error) {
	f, err := s.formRepo.FindByID(ctx, id, includeDeleted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormNotFound
		}
		return FormResponse{}, fmt.Errorf("failed to load form: %w", err)
	}
	return toFormResponse(*f), nil
}

func (s *formService) ListForms(ctx context.Context, filter repository.FormFilter) ([]FormSummary, int64, error) {
	forms, total, err := s.formRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	result := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		result = append(result, FormSummary{
			ID:               f.ID.String(),
			TrainingType:     f.TrainingType,
			TrainingName:     f.TrainingName,
			StartDate:        f.StartDate.Format(form.DateLayout),
			EndDate:          f.EndDate.Format(form.DateLayout),
			Submitter:        f.Submitter,
			SubmissionDate:   f.SubmissionDate.Format(time.RFC3339),
			Approved:         f.Approved,
			ReadyForApproval: f.ReadyForApproval,
			IsDraft:          f.IsDraft,
			Deleted:          f.Deleted,
			TraineeCount:     len(f.Trainees),
		})
	}
	return result, total, nil
}

func (s *formService) AddAttachment(ctx context.Context, actor Identity, formID uuid.UUID, filename, description string, r io.Reader) (AttachmentResponse, error) {
	f, err := s.formRepo.FindByID(ctx, formID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttachmentResponse{}, ErrFormNotFound
		}
		return AttachmentResponse{}, fmt.Errorf("failed to load form: %w", err)
	}
	if !actor.IsAdmin && actor.Email != f.Submitter {
		return AttachmentResponse{}, ErrNotAllowed
	}

	stored, err := s.store.Save(formID, filename, r)
	if err != nil {
		return AttachmentResponse{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	// Re-uploading the same filename overwrites the bytes and keeps the row.
	for _, existing := range f.Attachments {
		if existing.Filename == stored {
			return AttachmentResponse{
				ID:          existing.ID.String(),
				Filename:    existing.Filename,
				Description: existing.Description,
			}, nil
		}
	}

	attachment := model.Attachment{
		FormID:      formID,
		Filename:    stored,
		Description: description,
	}
	if err := s.attachmentRepo.Create(ctx, &attachment); err != nil {
		return AttachmentResponse{}, fmt.Errorf("failed to record attachment: %w", err)
	}
	return AttachmentResponse{
		ID:          attachment.ID.String(),
		Filename:    attachment.Filename,
		Description: attachment.Description,
	}, nil
}

func (s *formService) ListAttachments(ctx context.Context, formID uuid.UUID) ([]AttachmentResponse, error) {
	rows, err := s.attachmentRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	result := make([]AttachmentResponse, 0, len(rows))
	for _, a := range rows {
		result = append(result, AttachmentResponse{
			ID:          a.ID.String(),
			Filename:    a.Filename,
			Description: a.Description,
		})
	}
	return result, nil
}

func (s *formService) AttachmentPath(ctx context.Context, formID uuid.UUID, filename string) (string, error) {
	rows, err := s.attachmentRepo.ListByForm(ctx, formID)
	if err != nil {
		return "", fmt.Errorf("failed to list attachments: %w", err)
	}
	for _, a := range rows {
		if a.Filename == filename {
			return s.store.Path(formID, filename)
		}
	}
	return "", ErrFormNotFound
}

// --- Helpers ---

// buildHeader converts a validated draft into the persistable header row.
// Dates and money parse without error paths that validation has not already
// covered, but parse failures still surface defensively as errors.
func buildHeader(d form.FormDraft) (model.TrainingForm, error) {
	start, err := time.Parse(form.DateLayout, d.StartDate)
	if err != nil {
		return model.TrainingForm{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(form.DateLayout, d.EndDate)
	if err != nil {
		return model.TrainingForm{}, fmt.Errorf("invalid end_date: %w", err)
	}

	courseCost := decimal.Zero
	if d.CourseCost != "" {
		// Placeholder values like "NA" pass validation; they park the form
		// in the needs-changes state rather than failing the submit.
		if parsed, parseErr := decimal.NewFromString(d.CourseCost); parseErr == nil {
			courseCost = parsed
		}
	}

	return model.TrainingForm{
		TrainingType:        d.TrainingType,
		TrainingName:        d.TrainingName,
		TrainerName:         d.TrainerName,
		TrainerEmail:        d.TrainerEmail,
		TrainerDepartment:   d.TrainerDepartment,
		SupplierName:        d.SupplierName,
		LocationType:        d.LocationType,
		LocationDetails:     d.LocationDetails,
		StartDate:           start,
		EndDate:             end,
		TrainingHours:       d.TrainingHours,
		TrainingDescription: d.TrainingDescription,
		Notes:               d.Notes,
		IDAClass:            d.IDAClass,
		ConcurClaim:         d.ConcurClaim,
		CourseCost:          courseCost,
		InvoiceNumber:       d.InvoiceNumber,
		IsDraft:             d.IsDraft,
	}, nil
}

func toFormResponse(f model.TrainingForm) FormResponse {
	resp := FormResponse{
		ID:                  f.ID.String(),
		TrainingType:        f.TrainingType,
		TrainingName:        f.TrainingName,
		TrainerName:         f.TrainerName,
		TrainerEmail:        f.TrainerEmail,
		TrainerDepartment:   f.TrainerDepartment,
		SupplierName:        f.SupplierName,
		LocationType:        f.LocationType,
		LocationDetails:     f.LocationDetails,
		StartDate:           f.StartDate.Format(form.DateLayout),
		EndDate:             f.EndDate.Format(form.DateLayout),
		TrainingHours:       f.TrainingHours,
		TrainingDescription: f.TrainingDescription,
		Notes:               f.Notes,
		IDAClass:            f.IDAClass,
		ConcurClaim:         f.ConcurClaim,
		CourseCost:          f.CourseCost.StringFixed(2),
		InvoiceNumber:       f.InvoiceNumber,
		Submitter:           f.Submitter,
		SubmissionDate:      f.SubmissionDate.Format(time.RFC3339),
		Approved:            f.Approved,
		ReadyForApproval:    f.ReadyForApproval,
		IsDraft:             f.IsDraft,
		Deleted:             f.Deleted,
		Trainees:            []TraineeResponse{},
		TravelExpenses:      []TravelExpenseResponse{},
		MaterialExpenses:    []MaterialExpenseResponse{},
		Attachments:         []AttachmentResponse{},
	}
	if f.DeletedAt != nil {
		ts := f.DeletedAt.Format(time.RFC3339)
		resp.DeletedDatetimestamp = &ts
	}

	total := f.CourseCost
	for _, t := range f.Trainees {
		resp.Trainees = append(resp.Trainees, TraineeResponse{
			ID:         t.ID.String(),
			Name:       t.Name,
			Email:      t.Email,
			Department: t.Department,
		})
	}
	for _, e := range f.TravelExpenses {
		total = total.Add(e.Cost)
		resp.TravelExpenses = append(resp.TravelExpenses, TravelExpenseResponse{
			ID:            e.ID.String(),
			TravelDate:    e.TravelDate.Format(form.DateLayout),
			Destination:   e.Destination,
			TravelerType:  e.TravelerType,
			TravelerEmail: e.TravelerEmail,
			TravelerName:  e.TravelerName,
			TravelMode:    e.TravelMode,
			Cost:          e.Cost.StringFixed(2),
			DistanceKM:    e.DistanceKM.StringFixed(2),
			ConcurClaim:   e.ConcurClaim,
		})
	}
	for _, e := range f.MaterialExpenses {
		total = total.Add(e.MaterialCost)
		resp.MaterialExpenses = append(resp.MaterialExpenses, MaterialExpenseResponse{
			ID:            e.ID.String(),
			PurchaseDate:  e.PurchaseDate.Format(form.DateLayout),
			SupplierName:  e.SupplierName,
			InvoiceNumber: e.InvoiceNumber,
			MaterialCost:  e.MaterialCost.StringFixed(2),
			ConcurClaim:   e.ConcurClaim,
		})
	}
	for _, a := range f.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:          a.ID.String(),
			Filename:    a.Filename,
			Description: a.Description,
		})
	}
	resp.TotalExpenses = total.StringFixed(2)
	return resp
}
