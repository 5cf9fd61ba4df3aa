package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/repository"
)

type GroupService interface {
	Authenticate(ctx context.Context, groupID, password string) (*models.Group, error)
	GetByID(ctx context.Context, groupID string) (*models.Group, error)
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) error
	ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) error
}

type groupService struct {
	groupRepo repository.GroupRepository
	logger    zerolog.Logger
}

func NewGroupService(groupRepo repository.GroupRepository, logger zerolog.Logger) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

func (s *groupService) Authenticate(ctx context.Context, groupID, password string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(group.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return group, nil
}

func (s *groupService) GetByID(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *groupService) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) error {
	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	members := models.JoinMembers(req.Members)
	if err := s.groupRepo.UpdateProfile(ctx, req.GroupID, req.Project, members); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

func (s *groupService) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) error {
	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(group.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.groupRepo.UpdatePassword(ctx, req.GroupID, string(passwordHash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info().Str("group_id", req.GroupID).Msg("Group password changed")
	return nil
}
