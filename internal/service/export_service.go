package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"trainingforms/internal/form"
	"trainingforms/internal/model"
	"trainingforms/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Claim5Filename is the download name of every export.
const Claim5Filename = "claim5_export.xlsx"

// ExportOptions describes what an admin can filter the export by: the
// quarters that approved forms fall into and the overall date range.
type ExportOptions struct {
	Quarters []string `json:"quarters"`
	MinDate  *string  `json:"min_date"`
	MaxDate  *string  `json:"max_date"`
}

// ExportFilter selects forms for one export run. Quarters win over the
// date range when both are present; an empty filter exports everything.
type ExportFilter struct {
	Quarters  []string `json:"quarters"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

type ExportService interface {
	Options(ctx context.Context, actor Identity) (ExportOptions, error)
	ExportClaim5(ctx context.Context, actor Identity, filter ExportFilter) ([]byte, error)
}

type exportService struct {
	formRepo  repository.FormRepository
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewExportService(formRepo repository.FormRepository, auditRepo repository.AuditRepository, logger *zap.Logger) ExportService {
	return &exportService{formRepo: formRepo, auditRepo: auditRepo, logger: logger}
}

// Quarter renders the calendar quarter a date falls into, e.g. "Q3 2024".
func Quarter(t time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}

func (s *exportService) Options(ctx context.Context, actor Identity) (ExportOptions, error) {
	if !actor.IsAdmin {
		return ExportOptions{}, ErrNotAllowed
	}

	forms, err := s.formRepo.ListApprovedForExport(ctx)
	if err != nil {
		return ExportOptions{}, fmt.Errorf("failed to load approved forms: %w", err)
	}
	if len(forms) == 0 {
		return ExportOptions{Quarters: []string{}}, nil
	}

	seen := make(map[string]bool)
	var quarters []string
	minDate := forms[0].SubmissionDate
	maxDate := forms[0].SubmissionDate
	for _, f := range forms {
		q := Quarter(f.SubmissionDate)
		if !seen[q] {
			seen[q] = true
			quarters = append(quarters, q)
		}
		if f.SubmissionDate.Before(minDate) {
			minDate = f.SubmissionDate
		}
		if f.SubmissionDate.After(maxDate) {
			maxDate = f.SubmissionDate
		}
	}
	sort.Slice(quarters, func(i, j int) bool {
		var qi, yi, qj, yj int
		fmt.Sscanf(quarters[i], "Q%d %d", &qi, &yi)
		fmt.Sscanf(quarters[j], "Q%d %d", &qj, &yj)
		if yi != yj {
			return yi < yj
		}
		return qi < qj
	})

	minStr := minDate.Format(form.DateLayout)
	maxStr := maxDate.Format(form.DateLayout)
	return ExportOptions{Quarters: quarters, MinDate: &minStr, MaxDate: &maxStr}, nil
}

func (s *exportService) ExportClaim5(ctx context.Context, actor Identity, filter ExportFilter) ([]byte, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAllowed
	}

	forms, err := s.formRepo.ListApprovedForExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved forms: %w", err)
	}
	selected := filterForms(forms, filter)
	if len(selected) == 0 {
		return nil, ErrNoMatchingForms
	}

	payload, err := buildClaim5Workbook(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"form_count": len(selected),
		"quarters":   filter.Quarters,
		"start_date": filter.StartDate,
		"end_date":   filter.EndDate,
	})
	audit := &model.AuditLog{
		ActorEmail: actor.Email,
		Action:     model.ActionExportClaim5,
		EntityID:   Claim5Filename,
		Details:    string(details),
	}
	if auditErr := s.auditRepo.Log(ctx, audit); auditErr != nil {
		s.logger.Warn("failed to audit export", zap.Error(auditErr))
	}

	s.logger.Info("exported approved forms",
		zap.Int("form_count", len(selected)),
		zap.String("actor", actor.Email))
	return payload, nil
}

func filterForms(forms []model.TrainingForm, filter ExportFilter) []model.TrainingForm {
	if len(filter.Quarters) == 0 && (filter.StartDate == "" || filter.EndDate == "") {
		return forms
	}

	wanted := make(map[string]bool, len(filter.Quarters))
	for _, q := range filter.Quarters {
		wanted[q] = true
	}

	var selected []model.TrainingForm
	for _, f := range forms {
		day := f.SubmissionDate.Format(form.DateLayout)
		switch {
		case len(wanted) > 0:
			if wanted[Quarter(f.SubmissionDate)] {
				selected = append(selected, f)
			}
		case filter.StartDate <= day && day <= filter.EndDate:
			selected = append(selected, f)
		}
	}
	return selected
}

// Sheet layout mirrors the claim form template the finance team files:
// fixed sheet names with data starting below each sheet's header block.
const (
	traineeStartRow         = 16
	externalTrainerStartRow = 8
	internalTrainerStartRow = 9
	travelStartRow          = 12
	materialsStartRow       = 14
	personnelStartRow       = 3
)

func buildClaim5Workbook(forms []model.TrainingForm) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	sheets := []string{
		"Trainee", "Internal Trainers", "External Trainer",
		"Travel", "Materials", "Personnel Costs Lookup Table",
	}
	for i, name := range sheets {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := wb.NewSheet(name); err != nil {
			return nil, err
		}
	}

	if err := writeHeaders(wb); err != nil {
		return nil, err
	}

	// Personnel accumulates every distinct trainee and internal trainer in
	// first-seen order, keyed by the email local part.
	var personnel []string
	var departments []string
	seen := make(map[string]bool)
	addPersonnel := func(name, department string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		personnel = append(personnel, name)
		departments = append(departments, department)
	}

	traineeRow := traineeStartRow
	externalRow := externalTrainerStartRow
	internalRow := internalTrainerStartRow
	travelRow := travelStartRow
	materialsRow := materialsStartRow

	for _, f := range forms {
		internal := f.TrainingType == model.TrainingTypeInternal
		trainerName := emailLocalPart(f.TrainerEmail)

		for _, t := range f.Trainees {
			name := emailLocalPart(t.Email)
			addPersonnel(name, t.Department)

			setCells(wb, "Trainee", traineeRow, map[int]interface{}{
				1: name,
				2: f.TrainingName,
				3: certificationClass(f.IDAClass),
				5: f.TrainingHours,
				8: f.StartDate.Format(form.DateLayout),
				9: f.EndDate.Format(form.DateLayout),
			})
			if internal {
				addPersonnel(trainerName, f.TrainerDepartment)
				setCells(wb, "Trainee", traineeRow, map[int]interface{}{10: trainerName})
			} else {
				setCells(wb, "Trainee", traineeRow, map[int]interface{}{11: f.SupplierName})
			}
			traineeRow++
		}

		for _, e := range f.TravelExpenses {
			cost, _ := e.Cost.Float64()
			setCells(wb, "Travel", travelRow, map[int]interface{}{
				1: e.TravelDate.Format(form.DateLayout),
				2: emailLocalPart(e.TravelerEmail),
				3: travelModeLabel(e.TravelMode),
				5: cost,
				6: fmt.Sprintf("Destination: %s, Course Details: %s", e.Destination, f.TrainingName),
			})
			travelRow++
		}

		for _, e := range f.MaterialExpenses {
			cost, _ := e.MaterialCost.Float64()
			setCells(wb, "Materials", materialsRow, map[int]interface{}{
				1: e.PurchaseDate.Format(form.DateLayout),
				2: e.SupplierName,
				3: e.InvoiceNumber,
				5: cost,
				6: f.TrainingName,
			})
			materialsRow++
		}

		if internal {
			addPersonnel(trainerName, f.TrainerDepartment)
			setCells(wb, "Internal Trainers", internalRow, map[int]interface{}{
				1: trainerName,
				3: f.TrainingName,
				4: f.TrainingHours,
			})
			internalRow++
		} else {
			courseCost, _ := f.CourseCost.Float64()
			setCells(wb, "External Trainer", externalRow, map[int]interface{}{
				1: f.StartDate.Format(form.DateLayout),
				2: f.SupplierName,
				3: f.InvoiceNumber,
				4: f.TrainingName,
				5: courseCost,
				6: f.TrainingDescription,
			})
			externalRow++
		}
	}

	personnelRow := personnelStartRow
	for i, name := range personnel {
		setCells(wb, "Personnel Costs Lookup Table", personnelRow, map[int]interface{}{
			2: name,
			3: departments[i],
		})
		personnelRow++
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeaders(wb *excelize.File) error {
	type header struct {
		sheet string
		row   int
		cols  map[int]string
	}
	headers := []header{
		{"Trainee", traineeStartRow - 1, map[int]string{
			1: "Trainee Name", 2: "Course Code/Name", 3: "Certification Class",
			5: "Training Hours", 8: "Start Date", 9: "End Date",
			10: "Internal Trainer Name", 11: "External Trainer Name",
		}},
		{"Internal Trainers", internalTrainerStartRow - 1, map[int]string{
			1: "Trainer Name", 3: "Course Code/Name", 4: "Training Hours",
		}},
		{"External Trainer", externalTrainerStartRow - 1, map[int]string{
			1: "Date", 2: "Supplier", 3: "Invoice Number",
			4: "Course Code/Name", 5: "Course Cost", 6: "Course Description",
		}},
		{"Travel", travelStartRow - 1, map[int]string{
			1: "Date", 2: "Trainee/Trainer Name", 3: "Travel Type",
			5: "Travel Cost", 6: "Destination & Course Details",
		}},
		{"Materials", materialsStartRow - 1, map[int]string{
			1: "Date", 2: "Supplier", 3: "Invoice Number",
			5: "Course Materials", 6: "Course Details",
		}},
		{"Personnel Costs Lookup Table", personnelStartRow - 1, map[int]string{
			2: "Name", 3: "Department",
		}},
	}
	for _, h := range headers {
		for col, label := range h.cols {
			cell, err := excelize.CoordinatesToCellName(col, h.row)
			if err != nil {
				return err
			}
			if err := wb.SetCellValue(h.sheet, cell, label); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCells(wb *excelize.File, sheet string, row int, values map[int]interface{}) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			continue
		}
		_ = wb.SetCellValue(sheet, cell, v)
	}
}

// certificationClass condenses the stored ida class into the short code the
// claim template expects: "Class B - ..." becomes "B", the ongoing marker
// becomes "Ongoing", anything else passes through.
func certificationClass(idaClass string) string {
	if idaClass == "Training not completed/ongoing" {
		return "Ongoing"
	}
	if strings.HasPrefix(idaClass, "Class ") && len(idaClass) >= 7 {
		return idaClass[6:7]
	}
	return idaClass
}

func travelModeLabel(mode string) string {
	switch mode {
	case model.TravelModeMileage:
		return "Mileage"
	case model.TravelModeRail:
		return "Rail"
	case model.TravelModeBus:
		return "Bus"
	case model.TravelModeEconomyFlight:
		return "Economy Flight"
	default:
		return mode
	}
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
