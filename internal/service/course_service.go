package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/repository"
	"github.com/coursedeck/submission-service/internal/storage"
)

func init() {
	// Reject CSV columns that match no struct tag, so a roster with extra or
	// renamed columns fails validation instead of being half-read.
	gocsv.FailIfUnmatchedStructTags = true
}

type CourseService interface {
	Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	ImportCourses(ctx context.Context, file io.Reader) (int, error)
	Update(ctx context.Context, req *models.UpdateCourseRequest) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]models.CourseWithStats, error)
	SetDeadline(ctx context.Context, courseID int64, parts models.DeadlineParts) error
	ImportRoster(ctx context.Context, courseID int64, roster io.Reader, parts models.DeadlineParts) (int, error)
	RosterImported(ctx context.Context, courseID int64) (bool, error)
	ListRoster(ctx context.Context, courseID int64) ([]models.GroupWithSubmission, error)
	Remove(ctx context.Context, courseID int64) error
}

type courseService struct {
	courseRepo repository.CourseRepository
	groupRepo  repository.GroupRepository
	artifacts  storage.Provider
	packages   PackageService
	logger     zerolog.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	groupRepo repository.GroupRepository,
	artifacts storage.Provider,
	packages PackageService,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		groupRepo:  groupRepo,
		artifacts:  artifacts,
		packages:   packages,
		logger:     logger,
	}
}

func (s *courseService) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		Name:         req.Name,
		SchoolYear:   req.SchoolYear,
		Term:         req.Term,
		Grade:        req.Grade,
		RosterStatus: models.RosterStatusNotImported.String(),
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().Int64("course_id", course.ID).Str("name", course.Name).Msg("Course created")
	return course, nil
}

func (s *courseService) ImportCourses(ctx context.Context, file io.Reader) (int, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return 0, fmt.Errorf("failed to read course file: %w", err)
	}

	if err := checkHeader(data, []string{"courseName", "schoolYear", "term", "grade"}); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedCourseCSV, err)
	}

	var rows []models.CourseRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedCourseCSV, err)
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			return 0, fmt.Errorf("%w: empty course name", ErrMalformedCourseCSV)
		}
		courses = append(courses, models.Course{
			Name:       row.Name,
			SchoolYear: row.SchoolYear,
			Term:       row.Term,
			Grade:      row.Grade,
		})
	}

	if len(courses) == 0 {
		return 0, nil
	}

	if err := s.courseRepo.CreateBatch(ctx, courses); err != nil {
		return 0, fmt.Errorf("failed to insert courses: %w", err)
	}

	s.logger.Info().Int("count", len(courses)).Msg("Courses imported")
	return len(courses), nil
}

func (s *courseService) Update(ctx context.Context, req *models.UpdateCourseRequest) error {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return ErrCourseNotFound
	}

	course.Name = req.Name
	course.SchoolYear = req.SchoolYear
	course.Term = req.Term
	course.Grade = req.Grade

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

func (s *courseService) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context) ([]models.CourseWithStats, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) SetDeadline(ctx context.Context, courseID int64, parts models.DeadlineParts) error {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return ErrCourseNotFound
	}

	deadline := DeadlineFromParts(parts.Year, parts.Month, parts.Day, parts.Hour, parts.Minute)
	if err := s.courseRepo.SetDeadline(ctx, courseID, deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	s.logger.Info().Int64("course_id", courseID).Int64("deadline", deadline).Msg("Deadline updated")
	return nil
}

// ImportRoster replaces the course's group list wholesale. Validation happens
// before anything is touched; the database swap is a single transaction. A
// group id already taken by another course's group is re-keyed by prefixing
// the importing course's id, preserving global uniqueness.
func (s *courseService) ImportRoster(ctx context.Context, courseID int64, roster io.Reader, parts models.DeadlineParts) (int, error) {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return 0, ErrCourseNotFound
	}

	data, err := io.ReadAll(roster)
	if err != nil {
		return 0, fmt.Errorf("failed to read roster file: %w", err)
	}

	// The roster must carry exactly the two expected columns; anything else is
	// rejected before existing state is touched.
	if err := checkHeader(data, []string{"group id", "group member"}); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedRoster, err)
	}

	var rows []models.RosterRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedRoster, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no rows", ErrMalformedRoster)
	}

	groups := make([]models.Group, 0, len(rows))
	for i, row := range rows {
		if row.GroupID == "" || row.Members == "" {
			return 0, fmt.Errorf("%w: empty cell in row %d", ErrMalformedRoster, i+1)
		}

		groupID := row.GroupID
		taken, err := s.groupRepo.ExistsOutsideCourse(ctx, groupID, courseID)
		if err != nil {
			return 0, fmt.Errorf("failed to check group id: %w", err)
		}
		if taken {
			groupID = fmt.Sprintf("%d%s", courseID, groupID)
			s.logger.Warn().
				Str("original_id", row.GroupID).
				Str("effective_id", groupID).
				Int64("course_id", courseID).
				Msg("Group id collision, re-keyed with course prefix")
		}

		// Initial password is the effective group id; groups change it after
		// first login.
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(groupID), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("failed to hash password: %w", err)
		}

		groups = append(groups, models.Group{
			ID:           groupID,
			PasswordHash: string(passwordHash),
			Members:      row.Members,
		})
	}

	// The old roster's artifacts go first; the tree is rebuilt lazily as the
	// new groups upload.
	if err := s.artifacts.RemoveCourse(ctx, courseID); err != nil {
		return 0, fmt.Errorf("failed to clear course artifacts: %w", err)
	}

	deadline := DeadlineFromParts(parts.Year, parts.Month, parts.Day, parts.Hour, parts.Minute)
	if err := s.groupRepo.ReplaceForCourse(ctx, courseID, groups, deadline); err != nil {
		return 0, fmt.Errorf("failed to replace roster: %w", err)
	}

	s.logger.Info().
		Int64("course_id", courseID).
		Int("groups", len(groups)).
		Int64("deadline", deadline).
		Msg("Roster imported")

	return len(groups), nil
}

func checkHeader(data []byte, expected []string) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return fmt.Errorf("unreadable header: %v", err)
	}

	if len(header) != len(expected) {
		return fmt.Errorf("expected %d columns, got %d", len(expected), len(header))
	}
	for i, name := range expected {
		if header[i] != name {
			return fmt.Errorf("expected column %q, got %q", name, header[i])
		}
	}

	return nil
}

func (s *courseService) RosterImported(ctx context.Context, courseID int64) (bool, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return false, nil
	}
	return course.RosterImported(), nil
}

func (s *courseService) ListRoster(ctx context.Context, courseID int64) ([]models.GroupWithSubmission, error) {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	groups, err := s.groupRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	return groups, nil
}

// Remove cascades the delete. The database transaction commits first; the
// filesystem side is best-effort and failures only leave orphaned files for a
// later sweep, never an inconsistent database.
func (s *courseService) Remove(ctx context.Context, courseID int64) error {
	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return ErrCourseNotFound
	}

	if err := s.courseRepo.RemoveCascade(ctx, courseID); err != nil {
		return fmt.Errorf("failed to remove course: %w", err)
	}

	if err := s.artifacts.RemoveCourse(ctx, courseID); err != nil {
		s.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Orphaned artifact subtree left behind")
	}
	if err := s.packages.RemoveArchiveFile(courseID); err != nil {
		s.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Orphaned archive file left behind")
	}

	s.logger.Info().Int64("course_id", courseID).Msg("Course removed")
	return nil
}
