package repository

import (
	"context"
	"time"

	"trainingforms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteStatus filter values for listing.
const (
	DeleteStatusDefault    = ""            // non-deleted only
	DeleteStatusNotDeleted = "not_deleted" // explicit form of the default
	DeleteStatusDeleted    = "deleted"
	DeleteStatusApproved   = "approved"   // non-deleted and approved
	DeleteStatusUnapproved = "unapproved" // non-deleted, unapproved, not a draft
	DeleteStatusDraft      = "draft"
	DeleteStatusAll        = "all"
)

// FormFilter narrows and orders a form listing.
type FormFilter struct {
	Search       string
	TrainingType string
	Submitter    string
	DateFrom     *time.Time
	DateTo       *time.Time
	DeleteStatus string
	SortBy       string // submission_date, start_date, end_date, training_name
	SortOrder    string // ASC or DESC
	Page         int
	Limit        int
}

type FormRepository interface {
	Create(ctx context.Context, f *model.TrainingForm) error
	Update(ctx context.Context, f *model.TrainingForm) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*model.TrainingForm, error)
	List(ctx context.Context, filter FormFilter) ([]model.TrainingForm, int64, error)
	ReplaceTrainees(ctx context.Context, formID uuid.UUID, trainees []model.Trainee) error
	ReplaceTravelExpenses(ctx context.Context, formID uuid.UUID, expenses []model.TravelExpense) error
	ReplaceMaterialExpenses(ctx context.Context, formID uuid.UUID, expenses []model.MaterialExpense) error
	ListApprovedForExport(ctx context.Context) ([]model.TrainingForm, error)
}

type formRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) Create(ctx context.Context, f *model.TrainingForm) error {
	return GetDB(ctx, r.db).Create(f).Error
}

func (r *formRepository) Update(ctx context.Context, f *model.TrainingForm) error {
	return GetDB(ctx, r.db).Save(f).Error
}

func (r *formRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*model.TrainingForm, error) {
	query := GetDB(ctx, r.db).
		Preload("Trainees").
		Preload("TravelExpenses").
		Preload("MaterialExpenses").
		Preload("Attachments")
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}

	var f model.TrainingForm
	if err := query.First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *formRepository) List(ctx context.Context, filter FormFilter) ([]model.TrainingForm, int64, error) {
	db := GetDB(ctx, r.db)

	base := applyFormFilters(db.Model(&model.TrainingForm{}), filter)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	var forms []model.TrainingForm
	fetch := applyFormFilters(db.Preload("Trainees"), filter).
		Order(sortClause(filter.SortBy, filter.SortOrder)).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit)
	if err := fetch.Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

func (r *formRepository) ReplaceTrainees(ctx context.Context, formID uuid.UUID, trainees []model.Trainee) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("form_id = ?", formID).Delete(&model.Trainee{}).Error; err != nil {
		return err
	}
	for i := range trainees {
		trainees[i].FormID = formID
	}
	if len(trainees) == 0 {
		return nil
	}
	return db.Create(&trainees).Error
}

func (r *formRepository) ReplaceTravelExpenses(ctx context.Context, formID uuid.UUID, expenses []model.TravelExpense) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("form_id = ?", formID).Delete(&model.TravelExpense{}).Error; err != nil {
		return err
	}
	for i := range expenses {
		expenses[i].FormID = formID
	}
	if len(expenses) == 0 {
		return nil
	}
	return db.Create(&expenses).Error
}

func (r *formRepository) ReplaceMaterialExpenses(ctx context.Context, formID uuid.UUID, expenses []model.MaterialExpense) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("form_id = ?", formID).Delete(&model.MaterialExpense{}).Error; err != nil {
		return err
	}
	for i := range expenses {
		expenses[i].FormID = formID
	}
	if len(expenses) == 0 {
		return nil
	}
	return db.Create(&expenses).Error
}

// ListApprovedForExport returns every exportable aggregate: approved,
// not soft-deleted, children preloaded, unpaginated.
func (r *formRepository) ListApprovedForExport(ctx context.Context) ([]model.TrainingForm, error) {
	var forms []model.TrainingForm
	err := GetDB(ctx, r.db).
		Preload("Trainees").
		Preload("TravelExpenses").
		Preload("MaterialExpenses").
		Where("approved = ? AND deleted = ?", true, false).
		Order("submission_date").
		Find(&forms).Error
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func applyFormFilters(query *gorm.DB, filter FormFilter) *gorm.DB {
	switch filter.DeleteStatus {
	case DeleteStatusDeleted:
		query = query.Where("deleted = ?", true)
	case DeleteStatusApproved:
		query = query.Where("deleted = ? AND approved = ?", false, true)
	case DeleteStatusUnapproved:
		query = query.Where("deleted = ? AND approved = ? AND is_draft = ?", false, false, false)
	case DeleteStatusDraft:
		query = query.Where("deleted = ? AND is_draft = ?", false, true)
	case DeleteStatusAll:
	default:
		query = query.Where("deleted = ?", false)
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"training_name LIKE ? OR trainer_name LIKE ? OR trainer_email LIKE ? OR supplier_name LIKE ? OR location_details LIKE ? OR training_description LIKE ?",
			like, like, like, like, like, like,
		)
	}
	if filter.TrainingType != "" {
		query = query.Where("training_type = ?", filter.TrainingType)
	}
	if filter.Submitter != "" {
		query = query.Where("submitter = ?", filter.Submitter)
	}
	if filter.DateFrom != nil {
		query = query.Where("start_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("end_date <= ?", *filter.DateTo)
	}
	return query
}

// sortClause whitelists the sortable columns; anything else falls back to
// submission date, newest first.
func sortClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "start_date", "end_date", "training_name", "submission_date":
	default:
		sortBy = "submission_date"
	}
	if sortOrder == "ASC" {
		return sortBy + " ASC"
	}
	return sortBy + " DESC"
}
