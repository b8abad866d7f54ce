package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trainingforms/internal/model"
	"trainingforms/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminResponse struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ReceiveEmails bool   `json:"receive_emails"`
}

// AdminService manages the approver list. Admin emails come from the
// identity provider, so adding one is just recording the email here.
type AdminService interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
	ListAdmins(ctx context.Context, actor Identity) ([]AdminResponse, error)
	AddAdmin(ctx context.Context, actor Identity, email, firstName, lastName string) (AdminResponse, error)
	SetEmailPreference(ctx context.Context, actor Identity, email string, receiveEmails bool) error
}

type adminService struct {
	adminRepo repository.AdminRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	logger    *zap.Logger
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *adminService) IsAdmin(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	_, err := s.adminRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	return true, nil
}

func (s *adminService) ListAdmins(ctx context.Context, actor Identity) ([]AdminResponse, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAllowed
	}
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	result := make([]AdminResponse, 0, len(admins))
	for _, a := range admins {
		result = append(result, toAdminResponse(a))
	}
	return result, nil
}

func (s *adminService) AddAdmin(ctx context.Context, actor Identity, email, firstName, lastName string) (AdminResponse, error) {
	if !actor.IsAdmin {
		return AdminResponse{}, ErrNotAllowed
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AdminResponse{}, fmt.Errorf("email is required")
	}

	if _, err := s.adminRepo.FindByEmail(ctx, email); err == nil {
		return AdminResponse{}, ErrAdminExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AdminResponse{}, fmt.Errorf("failed to look up admin: %w", err)
	}

	admin := model.Admin{
		Email:         email,
		FirstName:     firstName,
		LastName:      lastName,
		ReceiveEmails: true,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.adminRepo.Create(txCtx, &admin); createErr != nil {
			return fmt.Errorf("failed to create admin: %w", createErr)
		}
		details, _ := json.Marshal(map[string]interface{}{"email": email})
		audit := &model.AuditLog{
			ActorEmail: actor.Email,
			Action:     model.ActionAddAdmin,
			EntityID:   email,
			EntityName: firstName + " " + lastName,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return AdminResponse{}, err
	}

	s.logger.Info("admin added",
		zap.String("email", email),
		zap.String("actor", actor.Email))
	return toAdminResponse(admin), nil
}

func (s *adminService) SetEmailPreference(ctx context.Context, actor Identity, email string, receiveEmails bool) error {
	// Admins can change anyone's preference; everyone else only their own.
	if !actor.IsAdmin && !strings.EqualFold(actor.Email, email) {
		return ErrNotAllowed
	}
	err := s.adminRepo.UpdateEmailPreference(ctx, strings.ToLower(email), receiveEmails)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return fmt.Errorf("failed to update email preference: %w", err)
	}
	return nil
}

func toAdminResponse(a model.Admin) AdminResponse {
	return AdminResponse{
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		ReceiveEmails: a.ReceiveEmails,
	}
}
