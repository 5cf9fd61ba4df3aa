package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/repository"
)

type AdminService interface {
	Authenticate(ctx context.Context, username, password string) (*models.Admin, error)
	Reset(ctx context.Context, currentUsername string, req *models.ResetAdminRequest) error
	EnsureDefault(ctx context.Context, username, password string) error
}

type adminService struct {
	adminRepo repository.AdminRepository
	logger    zerolog.Logger
}

func NewAdminService(adminRepo repository.AdminRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		logger:    logger,
	}
}

func (s *adminService) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// EnsureDefault seeds the admin account on a fresh database so /resetAdmin has
// something to rename. A non-empty table is left alone.
func (s *adminService) EnsureDefault(ctx context.Context, username, password string) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.Create(ctx, &models.Admin{
		Username:     username,
		PasswordHash: string(passwordHash),
	}); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Warn().Str("username", username).Msg("Default admin account created, change its password")
	return nil
}

func (s *adminService) Reset(ctx context.Context, currentUsername string, req *models.ResetAdminRequest) error {
	admin, err := s.adminRepo.GetByUsername(ctx, currentUsername)
	if err != nil {
		return fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return ErrAdminNotFound
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.Update(ctx, currentUsername, req.Username, string(passwordHash)); err != nil {
		return fmt.Errorf("failed to reset admin: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Msg("Admin account reset")
	return nil
}
