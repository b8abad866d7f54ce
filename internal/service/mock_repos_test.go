package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"trainingforms/internal/model"
	"trainingforms/internal/repository"
	"trainingforms/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory doubles for the repository layer. They mimic only the behavior
// the services rely on: not-found errors, soft-delete visibility and child
// replacement.

type mockTxManager struct{}

func (mockTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type mockFormRepo struct {
	mu    sync.Mutex
	forms map[uuid.UUID]model.TrainingForm
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{forms: make(map[uuid.UUID]model.TrainingForm)}
}

func (r *mockFormRepo) Create(ctx context.Context, f *model.TrainingForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.SubmissionDate.IsZero() {
		f.SubmissionDate = time.Now()
	}
	for i := range f.Trainees {
		f.Trainees[i].ID = uuid.New()
		f.Trainees[i].FormID = f.ID
	}
	for i := range f.TravelExpenses {
		f.TravelExpenses[i].ID = uuid.New()
		f.TravelExpenses[i].FormID = f.ID
	}
	for i := range f.MaterialExpenses {
		f.MaterialExpenses[i].ID = uuid.New()
		f.MaterialExpenses[i].FormID = f.ID
	}
	r.forms[f.ID] = *f
	return nil
}

func (r *mockFormRepo) Update(ctx context.Context, f *model.TrainingForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.forms[f.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Children are managed through the Replace methods.
	f.Trainees = stored.Trainees
	f.TravelExpenses = stored.TravelExpenses
	f.MaterialExpenses = stored.MaterialExpenses
	f.Attachments = stored.Attachments
	r.forms[f.ID] = *f
	return nil
}

func (r *mockFormRepo) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*model.TrainingForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if f.Deleted && !includeDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	copied := f
	return &copied, nil
}

func (r *mockFormRepo) List(ctx context.Context, filter repository.FormFilter) ([]model.TrainingForm, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.TrainingForm
	for _, f := range r.forms {
		result = append(result, f)
	}
	return result, int64(len(result)), nil
}

func (r *mockFormRepo) ReplaceTrainees(ctx context.Context, formID uuid.UUID, trainees []model.Trainee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range trainees {
		trainees[i].ID = uuid.New()
		trainees[i].FormID = formID
	}
	f.Trainees = trainees
	r.forms[formID] = f
	return nil
}

func (r *mockFormRepo) ReplaceTravelExpenses(ctx context.Context, formID uuid.UUID, expenses []model.TravelExpense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range expenses {
		expenses[i].ID = uuid.New()
		expenses[i].FormID = formID
	}
	f.TravelExpenses = expenses
	r.forms[formID] = f
	return nil
}

func (r *mockFormRepo) ReplaceMaterialExpenses(ctx context.Context, formID uuid.UUID, expenses []model.MaterialExpense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[formID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range expenses {
		expenses[i].ID = uuid.New()
		expenses[i].FormID = formID
	}
	f.MaterialExpenses = expenses
	r.forms[formID] = f
	return nil
}

func (r *mockFormRepo) ListApprovedForExport(ctx context.Context) ([]model.TrainingForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.TrainingForm
	for _, f := range r.forms {
		if f.Approved && !f.Deleted {
			result = append(result, f)
		}
	}
	return result, nil
}

type mockAttachmentRepo struct {
	mu   sync.Mutex
	rows []model.Attachment
}

func (r *mockAttachmentRepo) Create(ctx context.Context, a *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	r.rows = append(r.rows, *a)
	return nil
}

func (r *mockAttachmentRepo) ListByForm(ctx context.Context, formID uuid.UUID) ([]model.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Attachment
	for _, a := range r.rows {
		if a.FormID == formID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *mockAttachmentRepo) DeleteByForm(ctx context.Context, formID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, a := range r.rows {
		if a.FormID != formID {
			kept = append(kept, a)
		}
	}
	r.rows = kept
	return nil
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *mockAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditLog(nil), r.entries...), int64(len(r.entries)), nil
}

func (r *mockAuditRepo) lastAction() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

type mockAdminRepo struct {
	mu     sync.Mutex
	admins map[string]model.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]model.Admin)}
}

func (r *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *mockAdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[admin.Email] = *admin
	return nil
}

func (r *mockAdminRepo) List(ctx context.Context) ([]model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Admin
	for _, a := range r.admins {
		result = append(result, a)
	}
	return result, nil
}

func (r *mockAdminRepo) UpdateEmailPreference(ctx context.Context, email string, receiveEmails bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[email]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.ReceiveEmails = receiveEmails
	r.admins[email] = a
	return nil
}

func (r *mockAdminRepo) NotificationEmails(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []string
	for _, a := range r.admins {
		if a.ReceiveEmails {
			result = append(result, a.Email)
		}
	}
	return result, nil
}

type mockStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (s *mockStore) Save(formID uuid.UUID, filename string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.files[formID.String()+"/"+filename] = buf.Bytes()
	return filename, nil
}

func (s *mockStore) Path(formID uuid.UUID, filename string) (string, error) {
	return "uploads/form_" + formID.String() + "/" + filename, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []websocket.FormEvent
}

func (b *recordingBroadcaster) BroadcastEvent(event websocket.FormEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) lastEvent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return ""
	}
	return b.events[len(b.events)-1].Event
}
