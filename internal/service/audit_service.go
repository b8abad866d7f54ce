package service

import (
	"context"
	"fmt"
	"time"

	"trainingforms/internal/repository"
)

type AuditEntry struct {
	ID         string `json:"id"`
	ActorEmail string `json:"actor_email"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService exposes the audit trail to admins, newest first.
type AuditService interface {
	List(ctx context.Context, actor Identity, page, limit int) ([]AuditEntry, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, actor Identity, page, limit int) ([]AuditEntry, int64, error) {
	if !actor.IsAdmin {
		return nil, 0, ErrNotAllowed
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := make([]AuditEntry, 0, len(logs))
	for _, l := range logs {
		result = append(result, AuditEntry{
			ID:         l.ID.String(),
			ActorEmail: l.ActorEmail,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}
