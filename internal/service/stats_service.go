package service

import (
	"context"
	"time"

	"trainingforms/internal/model"

	"gorm.io/gorm"
)

type QuarterCost struct {
	Quarter   string  `json:"quarter"`
	FormCount int64   `json:"form_count"`
	TotalCost float64 `json:"total_cost"`
}

type SubmitterRanking struct {
	Submitter string `json:"submitter"`
	FormCount int64  `json:"form_count"`
}

type StatisticsResponse struct {
	TotalForms     int64 `json:"total_forms"`
	ApprovedForms  int64 `json:"approved_forms"`
	PendingForms   int64 `json:"pending_forms"`
	DraftForms     int64 `json:"draft_forms"`
	DeletedForms   int64 `json:"deleted_forms"`
	NeedingChanges int64 `json:"needing_changes"`

	QuarterlyCosts []QuarterCost      `json:"quarterly_costs"`
	TopSubmitters  []SubmitterRanking `json:"top_submitters"`
}

type StatisticsService interface {
	GetStatistics(ctx context.Context) (StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates form counts by lifecycle state plus per-quarter
// spend and the most active submitters. Aggregation runs in SQL; only the
// quarter bucketing of spend happens here because the quarter label derives
// from the submission date.
func (s *statisticsService) GetStatistics(ctx context.Context) (StatisticsResponse, error) {
	var response StatisticsResponse

	base := s.db.WithContext(ctx).Model(&model.TrainingForm{})
	if err := base.Session(&gorm.Session{}).Count(&response.TotalForms).Error; err != nil {
		return response, err
	}

	counts := []struct {
		dst   *int64
		where string
		args  []interface{}
	}{
		{&response.ApprovedForms, "approved = ? AND deleted = ?", []interface{}{true, false}},
		{&response.PendingForms, "approved = ? AND deleted = ? AND is_draft = ? AND ready_for_approval = ?", []interface{}{false, false, false, true}},
		{&response.DraftForms, "is_draft = ? AND deleted = ?", []interface{}{true, false}},
		{&response.DeletedForms, "deleted = ?", []interface{}{true}},
		{&response.NeedingChanges, "ready_for_approval = ? AND deleted = ?", []interface{}{false, false}},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(&model.TrainingForm{}).
			Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return response, err
		}
	}

	// Per-quarter spend over approved, non-deleted forms. Course cost plus
	// travel and material totals, bucketed by submission date.
	type spendRow struct {
		SubmissionDate time.Time
		Total          float64
	}
	var spend []spendRow
	err := s.db.WithContext(ctx).Model(&model.TrainingForm{}).
		Select(`training_forms.submission_date as submission_date,
			training_forms.course_cost
			+ COALESCE((SELECT SUM(cost) FROM travel_expenses WHERE travel_expenses.form_id = training_forms.id), 0)
			+ COALESCE((SELECT SUM(material_cost) FROM material_expenses WHERE material_expenses.form_id = training_forms.id), 0)
			as total`).
		Where("approved = ? AND deleted = ?", true, false).
		Scan(&spend).Error
	if err != nil {
		return response, err
	}

	byQuarter := make(map[string]*QuarterCost)
	var order []string
	for _, row := range spend {
		q := Quarter(row.SubmissionDate)
		bucket, ok := byQuarter[q]
		if !ok {
			bucket = &QuarterCost{Quarter: q}
			byQuarter[q] = bucket
			order = append(order, q)
		}
		bucket.FormCount++
		bucket.TotalCost += row.Total
	}
	response.QuarterlyCosts = make([]QuarterCost, 0, len(order))
	for _, q := range order {
		response.QuarterlyCosts = append(response.QuarterlyCosts, *byQuarter[q])
	}

	var rankings []SubmitterRanking
	err = s.db.WithContext(ctx).Model(&model.TrainingForm{}).
		Select("submitter, COUNT(*) as form_count").
		Where("deleted = ?", false).
		Group("submitter").
		Order("form_count DESC").
		Limit(5).
		Scan(&rankings).Error
	if err != nil {
		return response, err
	}
	response.TopSubmitters = rankings

	return response, nil
}
