package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trainingforms/internal/model"
	"trainingforms/internal/repository"
	"trainingforms/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApprovalService drives the lifecycle transitions: approve, unapprove,
// soft delete, recover. Approval is admin-only and gated on the derived
// ready-for-approval flag; soft delete always clears approval so a deleted
// form can never surface in exports.
type ApprovalService interface {
	SetApproval(ctx context.Context, actor Identity, id uuid.UUID, approved bool) (FormResponse, error)
	SoftDelete(ctx context.Context, actor Identity, id uuid.UUID) (FormResponse, error)
	Recover(ctx context.Context, actor Identity, id uuid.UUID) (FormResponse, error)
}

type approvalService struct {
	formRepo    repository.FormRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	broadcaster EventBroadcaster
	logger      *zap.Logger
}

func NewApprovalService(
	formRepo repository.FormRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	broadcaster EventBroadcaster,
	logger *zap.Logger,
) ApprovalService {
	return &approvalService{
		formRepo:    formRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *approvalService) SetApproval(ctx context.Context, actor Identity, id uuid.UUID, approved bool) (FormResponse, error) {
	if !actor.IsAdmin {
		return FormResponse{}, ErrNotAllowed
	}

	f, err := s.formRepo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormNotFound
		}
		return FormResponse{}, fmt.Errorf("failed to load form: %w", err)
	}

	if approved && !f.ReadyForApproval {
		return FormResponse{}, ErrNeedsChanges
	}

	action := model.ActionApproveForm
	event := "form_approved"
	if !approved {
		action = model.ActionUnapprove
		event = "form_unapproved"
	}

	f.Approved = approved
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.formRepo.Update(txCtx, f); updateErr != nil {
			return fmt.Errorf("failed to update approval: %w", updateErr)
		}
		details, _ := json.Marshal(map[string]interface{}{"approved": approved})
		audit := &model.AuditLog{
			ActorEmail: actor.Email,
			Action:     action,
			EntityID:   id.String(),
			EntityName: f.TrainingName,
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
		Event:        event,
		FormID:       id.String(),
		TrainingName: f.TrainingName,
		Submitter:    f.Submitter,
		Actor:        actor.Email,
		OccurredAt:   time.Now(),
	})

	s.logger.Info("approval updated",
		zap.String("form_id", id.String()),
		zap.Bool("approved", approved),
		zap.String("actor", actor.Email))

	return toFormResponse(*f), nil
}

func (s *approvalService) SoftDelete(ctx context.Context, actor Identity, id uuid.UUID) (FormResponse, error) {
	f, err := s.formRepo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormNotFound
		}
		return FormResponse{}, fmt.Errorf("failed to load form: %w", err)
	}
	if !actor.IsAdmin && actor.Email != f.Submitter {
		return FormResponse{}, ErrNotAllowed
	}

	now := time.Now()
	f.Deleted = true
	f.DeletedAt = &now
	// A deleted form cannot stay approved or it would leak into exports.
	f.Approved = false

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.formRepo.Update(txCtx, f); updateErr != nil {
			return fmt.Errorf("failed to soft delete form: %w", updateErr)
		}
		audit := &model.AuditLog{
			ActorEmail: actor.Email,
			Action:     model.ActionSoftDelete,
			EntityID:   id.String(),
			EntityName: f.TrainingName,
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
		Event:        "form_deleted",
		FormID:       id.String(),
		TrainingName: f.TrainingName,
		Submitter:    f.Submitter,
		Actor:        actor.Email,
		OccurredAt:   now,
	})

	s.logger.Info("form soft deleted",
		zap.String("form_id", id.String()),
		zap.String("actor", actor.Email))

	return toFormResponse(*f), nil
}

func (s *approvalService) Recover(ctx context.Context, actor Identity, id uuid.UUID) (FormResponse, error) {
	if !actor.IsAdmin {
		return FormResponse{}, ErrNotAllowed
	}

	f, err := s.formRepo.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResponse{}, ErrFormNotFound
		}
		return FormResponse{}, fmt.Errorf("failed to load form: %w", err)
	}

	f.Deleted = false
	f.DeletedAt = nil
	// Recovery does not restore approval; the form returns unapproved.

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.formRepo.Update(txCtx, f); updateErr != nil {
			return fmt.Errorf("failed to recover form: %w", updateErr)
		}
		audit := &model.AuditLog{
			ActorEmail: actor.Email,
			Action:     model.ActionRecoverForm,
			EntityID:   id.String(),
			EntityName: f.TrainingName,
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
		Event:        "form_recovered",
		FormID:       id.String(),
		TrainingName: f.TrainingName,
		Submitter:    f.Submitter,
		Actor:        actor.Email,
		OccurredAt:   time.Now(),
	})

	s.logger.Info("form recovered",
		zap.String("form_id", id.String()),
		zap.String("actor", actor.Email))

	return toFormResponse(*f), nil
}
