package repository

import (
	"context"

	"trainingforms/internal/model"

	"gorm.io/gorm"
)

// EmployeeRepository reads the directory rows behind the people pickers.
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := GetDB(ctx, r.db).Order("last_name, first_name").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var e model.Employee
	if err := GetDB(ctx, r.db).First(&e, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CatalogRepository reads the pre-approved course catalogue.
type CatalogRepository interface {
	List(ctx context.Context) ([]model.TrainingCatalog, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) List(ctx context.Context) ([]model.TrainingCatalog, error) {
	var entries []model.TrainingCatalog
	if err := GetDB(ctx, r.db).Order("training_name").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
