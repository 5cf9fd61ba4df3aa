package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/repository"
	"github.com/coursedeck/submission-service/internal/service/integration"
	"github.com/coursedeck/submission-service/internal/storage"
)

type PackageService interface {
	// RequestBuild kicks off an archive build and returns immediately. A
	// request for a course whose build is already in flight coalesces into it.
	RequestBuild(courseID int64)
	Status(ctx context.Context, courseID int64) (bool, error)
	Delete(ctx context.Context, courseID int64) error
	ArchivePath(courseID int64) string
	RemoveArchiveFile(courseID int64) error
}

type packageService struct {
	packageRepo repository.PackageRepository
	artifacts   storage.Provider
	publisher   integration.EventPublisher
	packageRoot string
	clock       Clock
	logger      zerolog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewPackageService(
	packageRepo repository.PackageRepository,
	artifacts storage.Provider,
	publisher integration.EventPublisher,
	packageRoot string,
	clock Clock,
	logger zerolog.Logger,
) PackageService {
	return &packageService{
		packageRepo: packageRepo,
		artifacts:   artifacts,
		publisher:   publisher,
		packageRoot: packageRoot,
		clock:       clock,
		logger:      logger,
		inFlight:    make(map[int64]struct{}),
	}
}

func (s *packageService) RequestBuild(courseID int64) {
	s.mu.Lock()
	if _, running := s.inFlight[courseID]; running {
		s.mu.Unlock()
		s.logger.Info().Int64("course_id", courseID).Msg("Archive build already in flight, coalescing")
		return
	}
	s.inFlight[courseID] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, courseID)
			s.mu.Unlock()
		}()

		// Detached from the triggering request: the build outlives any request
		// timeout and clients poll Status for the result.
		if err := s.build(context.Background(), courseID); err != nil {
			s.logger.Error().Err(err).Int64("course_id", courseID).Msg("Archive build failed")
		}
	}()
}

// build streams every artifact of the course into a single zip, entry names
// kept as groupId/filename. The zip lands on a temp path first and is renamed
// into place so a half-written archive is never observable.
func (s *packageService) build(ctx context.Context, courseID int64) error {
	objects, err := s.artifacts.ListCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to list course artifacts: %w", err)
	}

	if err := os.MkdirAll(s.packageRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create package root: %w", err)
	}

	finalPath := s.ArchivePath(courseID)
	tempPath := finalPath + ".tmp"

	if err := s.writeArchive(ctx, courseID, tempPath, objects); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	if err := s.packageRepo.SetPackaged(ctx, courseID); err != nil {
		return fmt.Errorf("failed to mark course packaged: %w", err)
	}

	s.logger.Info().
		Int64("course_id", courseID).
		Str("archive", finalPath).
		Int("files", len(objects)).
		Msg("Archive built")

	if s.publisher != nil {
		event := &models.PackageBuiltEvent{
			CourseID:  courseID,
			Archive:   filepath.Base(finalPath),
			FileCount: len(objects),
			Timestamp: s.clock.Now().Unix(),
		}
		if err := s.publisher.PublishPackageBuilt(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish package built event")
		}
	}

	return nil
}

func (s *packageService) writeArchive(ctx context.Context, courseID int64, path string, objects []storage.Object) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for _, object := range objects {
		entry, err := zw.Create(object.GroupID + "/" + object.Name)
		if err != nil {
			return fmt.Errorf("failed to create archive entry: %w", err)
		}

		content, _, err := s.artifacts.Open(ctx, courseID, object.GroupID, object.Name)
		if err != nil {
			return fmt.Errorf("failed to open artifact %s/%s: %w", object.GroupID, object.Name, err)
		}

		_, err = io.Copy(entry, content)
		content.Close()
		if err != nil {
			return fmt.Errorf("failed to write archive entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	return nil
}

// Status is the conjunction of the database flag and the archive file actually
// existing; a flag left behind after someone deleted the file reads as not
// packaged.
func (s *packageService) Status(ctx context.Context, courseID int64) (bool, error) {
	status, err := s.packageRepo.Get(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to get package status: %w", err)
	}
	if status == nil || !status.Packaged {
		return false, nil
	}

	if _, err := os.Stat(s.ArchivePath(courseID)); err != nil {
		return false, nil
	}

	return true, nil
}

func (s *packageService) Delete(ctx context.Context, courseID int64) error {
	if err := s.RemoveArchiveFile(courseID); err != nil {
		return fmt.Errorf("failed to remove archive: %w", err)
	}

	if err := s.packageRepo.SetNotPackaged(ctx, courseID); err != nil {
		return fmt.Errorf("failed to clear package status: %w", err)
	}

	s.logger.Info().Int64("course_id", courseID).Msg("Archive deleted")
	return nil
}

func (s *packageService) ArchivePath(courseID int64) string {
	return filepath.Join(s.packageRoot, strconv.FormatInt(courseID, 10)+".zip")
}

func (s *packageService) RemoveArchiveFile(courseID int64) error {
	err := os.Remove(s.ArchivePath(courseID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
