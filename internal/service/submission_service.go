package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/repository"
	"github.com/coursedeck/submission-service/internal/service/integration"
	"github.com/coursedeck/submission-service/internal/storage"
	"github.com/coursedeck/submission-service/pkg/hash"
)

type SubmissionService interface {
	Record(ctx context.Context, groupID string, artifacts []models.Artifact) (*models.SubmitResponse, error)
	Retract(ctx context.Context, groupID string) error
	HasSubmitted(ctx context.Context, groupID string) (bool, error)
	ListByCourse(ctx context.Context, courseID int64, limit int) ([]models.SubmissionWithGroup, error)
}

type submissionService struct {
	groupRepo      repository.GroupRepository
	courseRepo     repository.CourseRepository
	submissionRepo repository.SubmissionRepository
	artifacts      storage.Provider
	gate           *DeadlineGate
	clock          Clock
	publisher      integration.EventPublisher
	hasher         *hash.ContentHasher
	logger         zerolog.Logger
}

func NewSubmissionService(
	groupRepo repository.GroupRepository,
	courseRepo repository.CourseRepository,
	submissionRepo repository.SubmissionRepository,
	artifacts storage.Provider,
	gate *DeadlineGate,
	clock Clock,
	publisher integration.EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		groupRepo:      groupRepo,
		courseRepo:     courseRepo,
		submissionRepo: submissionRepo,
		artifacts:      artifacts,
		gate:           gate,
		clock:          clock,
		publisher:      publisher,
		hasher:         hash.NewContentHasher(hash.SHA256),
		logger:         logger,
	}
}

// Record persists the uploaded artifact set and upserts the submission row.
// The deadline gate is evaluated here, at write time, not when the upload page
// was rendered: the deadline may have moved in between.
func (s *submissionService) Record(ctx context.Context, groupID string, artifacts []models.Artifact) (*models.SubmitResponse, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	course, err := s.courseRepo.GetByID(ctx, group.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	if !s.gate.IsAccepting(course) {
		return nil, ErrDeadlinePassed
	}

	// Artifact writes overwrite the fixed slot filenames, so a retried upload
	// after a partial failure is safe.
	for _, artifact := range artifacts {
		if err := s.saveArtifact(ctx, course.ID, groupID, artifact); err != nil {
			return nil, err
		}
	}

	submission := &models.Submission{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		CourseID:    course.ID,
		SubmittedAt: s.clock.Now().Unix(),
	}

	created, err := s.submissionRepo.Upsert(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	s.logger.Info().
		Str("group_id", groupID).
		Int64("course_id", course.ID).
		Bool("resubmission", !created).
		Int("artifacts", len(artifacts)).
		Msg("Submission recorded")

	if s.publisher != nil {
		event := &models.SubmissionReceivedEvent{
			GroupID:      groupID,
			CourseID:     course.ID,
			SubmittedAt:  submission.SubmittedAt,
			Resubmission: !created,
		}
		if err := s.publisher.PublishSubmissionReceived(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish submission received event")
		}
	}

	return &models.SubmitResponse{
		GroupID:      groupID,
		CourseID:     course.ID,
		SubmittedAt:  submission.SubmittedAt,
		Resubmission: !created,
	}, nil
}

func (s *submissionService) saveArtifact(ctx context.Context, courseID int64, groupID string, artifact models.Artifact) error {
	if !artifact.Kind.Valid() {
		return fmt.Errorf("unknown artifact slot %q", artifact.Kind)
	}

	hasher, err := s.hasher.NewWriter()
	if err != nil {
		return err
	}

	content := io.TeeReader(artifact.Content, hasher)
	if err := s.artifacts.Save(ctx, courseID, groupID, artifact.Kind.FileName(), content, artifact.Size); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", artifact.Kind, err)
	}

	s.logger.Debug().
		Str("group_id", groupID).
		Str("file", artifact.Kind.FileName()).
		Str("sha256", hash.Sum(hasher)).
		Msg("Artifact stored")

	return nil
}

// Retract is the admin-side reversal: wipe the group's artifact subtree, drop
// the submission row, flip the status back. An already-missing subtree is fine.
func (s *submissionService) Retract(ctx context.Context, groupID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	if err := s.artifacts.RemoveGroup(ctx, group.CourseID, groupID); err != nil {
		return fmt.Errorf("failed to remove artifacts: %w", err)
	}

	if err := s.submissionRepo.DeleteWithStatusReset(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	s.logger.Info().
		Str("group_id", groupID).
		Int64("course_id", group.CourseID).
		Msg("Submission retracted")

	return nil
}

func (s *submissionService) HasSubmitted(ctx context.Context, groupID string) (bool, error) {
	submission, err := s.submissionRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission != nil, nil
}

func (s *submissionService) ListByCourse(ctx context.Context, courseID int64, limit int) ([]models.SubmissionWithGroup, error) {
	submissions, err := s.submissionRepo.GetByCourse(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}
