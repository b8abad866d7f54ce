package repository

import (
	"context"

	"trainingforms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *model.Attachment) error
	ListByForm(ctx context.Context, formID uuid.UUID) ([]model.Attachment, error)
	DeleteByForm(ctx context.Context, formID uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *attachmentRepository) ListByForm(ctx context.Context, formID uuid.UUID) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := GetDB(ctx, r.db).Where("form_id = ?", formID).Order("created_at").Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) DeleteByForm(ctx context.Context, formID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("form_id = ?", formID).Delete(&model.Attachment{}).Error
}
