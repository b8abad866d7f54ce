package repository

import (
	"context"

	"trainingforms/internal/model"

	"gorm.io/gorm"
)

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
	List(ctx context.Context) ([]model.Admin, error)
	UpdateEmailPreference(ctx context.Context, email string, receiveEmails bool) error
	NotificationEmails(ctx context.Context) ([]string, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	if err := GetDB(ctx, r.db).First(&admin, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	return GetDB(ctx, r.db).Create(admin).Error
}

func (r *adminRepository) List(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := GetDB(ctx, r.db).Order("email").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepository) UpdateEmailPreference(ctx context.Context, email string, receiveEmails bool) error {
	res := GetDB(ctx, r.db).Model(&model.Admin{}).
		Where("email = ?", email).
		Update("receive_emails", receiveEmails)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NotificationEmails lists the admins who opted into the notification feed.
func (r *adminRepository) NotificationEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := GetDB(ctx, r.db).Model(&model.Admin{}).
		Where("receive_emails = ?", true).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}
