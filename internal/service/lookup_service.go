package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trainingforms/internal/model"
	"trainingforms/internal/repository"

	"go.uber.org/zap"
)

// lookupCacheTTL bounds how stale the picker lists may get. The directory
// and catalog change rarely, so a day-old copy is acceptable.
const lookupCacheTTL = 24 * time.Hour

type EmployeeOption struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Department  string `json:"department"`
}

type CatalogOption struct {
	ID            string  `json:"id"`
	Area          string  `json:"area"`
	TrainingName  string  `json:"training_name"`
	TrainingDesc  string  `json:"training_desc"`
	IDAClass      string  `json:"ida_class"`
	TrainingType  string  `json:"training_type"`
	TrainingHours float64 `json:"training_hours"`
	SupplierName  string  `json:"supplier_name"`
	CourseCost    string  `json:"course_cost"`
}

// LookupService serves the employee picker and the training catalog behind
// a time-based cache so form rendering never hammers the lookup tables.
type LookupService interface {
	Employees(ctx context.Context) ([]EmployeeOption, error)
	Catalog(ctx context.Context) ([]CatalogOption, error)
	Invalidate()
}

type lookupService struct {
	employeeRepo repository.EmployeeRepository
	catalogRepo  repository.CatalogRepository
	logger       *zap.Logger

	mu              sync.Mutex
	employees       []EmployeeOption
	employeesLoaded time.Time
	catalog         []CatalogOption
	catalogLoaded   time.Time
}

func NewLookupService(employeeRepo repository.EmployeeRepository, catalogRepo repository.CatalogRepository, logger *zap.Logger) LookupService {
	return &lookupService{
		employeeRepo: employeeRepo,
		catalogRepo:  catalogRepo,
		logger:       logger,
	}
}

func (s *lookupService) Employees(ctx context.Context) ([]EmployeeOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.employees != nil && time.Since(s.employeesLoaded) < lookupCacheTTL {
		return s.employees, nil
	}

	rows, err := s.employeeRepo.List(ctx)
	if err != nil {
		// Serve the stale copy if one exists rather than failing the form.
		if s.employees != nil {
			s.logger.Warn("employee lookup refresh failed, serving cached copy", zap.Error(err))
			return s.employees, nil
		}
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	options := make([]EmployeeOption, 0, len(rows))
	for _, e := range rows {
		options = append(options, EmployeeOption{
			Email:       e.Email,
			DisplayName: e.DisplayName(),
			Department:  e.Department,
		})
	}
	s.employees = options
	s.employeesLoaded = time.Now()
	s.logger.Info("employee lookup cache refreshed", zap.Int("count", len(options)))
	return options, nil
}

func (s *lookupService) Catalog(ctx context.Context) ([]CatalogOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog != nil && time.Since(s.catalogLoaded) < lookupCacheTTL {
		return s.catalog, nil
	}

	rows, err := s.catalogRepo.List(ctx)
	if err != nil {
		if s.catalog != nil {
			s.logger.Warn("catalog lookup refresh failed, serving cached copy", zap.Error(err))
			return s.catalog, nil
		}
		return nil, fmt.Errorf("failed to load training catalog: %w", err)
	}

	s.catalog = toCatalogOptions(rows)
	s.catalogLoaded = time.Now()
	s.logger.Info("training catalog cache refreshed", zap.Int("count", len(s.catalog)))
	return s.catalog, nil
}

func (s *lookupService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = nil
	s.catalog = nil
}

func toCatalogOptions(rows []model.TrainingCatalog) []CatalogOption {
	options := make([]CatalogOption, 0, len(rows))
	for _, c := range rows {
		options = append(options, CatalogOption{
			ID:            c.ID.String(),
			Area:          c.Area,
			TrainingName:  c.TrainingName,
			TrainingDesc:  c.TrainingDesc,
			IDAClass:      c.IDAClass,
			TrainingType:  c.TrainingType,
			TrainingHours: c.TrainingHours,
			SupplierName:  c.SupplierName,
			CourseCost:    c.CourseCost.StringFixed(2),
		})
	}
	return options
}
