package service

import (
	"context"
	"sync"
	"time"

	"github.com/coursedeck/submission-service/internal/models"
)

// memDB backs the repository fakes with plain maps so service tests exercise
// the real transaction-shaped semantics without a database.
type memDB struct {
	mu           sync.Mutex
	nextCourseID int64
	courses      map[int64]models.Course
	groups       map[string]models.Group
	submissions  map[string]models.Submission // keyed by group id
	packages     map[int64]bool
}

func newMemDB() *memDB {
	return &memDB{
		courses:     make(map[int64]models.Course),
		groups:      make(map[string]models.Group),
		submissions: make(map[string]models.Submission),
		packages:    make(map[int64]bool),
	}
}

type fakeCourseRepo struct{ db *memDB }

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextCourseID++
	course.ID = r.db.nextCourseID
	r.db.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) CreateBatch(ctx context.Context, courses []models.Course) error {
	for i := range courses {
		if err := r.Create(ctx, &courses[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	course, ok := r.db.courses[id]
	if !ok {
		return nil, nil
	}
	return &course, nil
}

func (r *fakeCourseRepo) GetAll(ctx context.Context) ([]models.CourseWithStats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.CourseWithStats
	for _, course := range r.db.courses {
		out = append(out, models.CourseWithStats{Course: course})
	}
	return out, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) SetDeadline(ctx context.Context, id int64, deadline int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	course := r.db.courses[id]
	course.Deadline = &deadline
	r.db.courses[id] = course
	return nil
}

func (r *fakeCourseRepo) RemoveCascade(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for groupID, group := range r.db.groups {
		if group.CourseID == id {
			delete(r.db.groups, groupID)
			delete(r.db.submissions, groupID)
		}
	}
	delete(r.db.packages, id)
	delete(r.db.courses, id)
	return nil
}

func (r *fakeCourseRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.courses[id]
	return ok, nil
}

type fakeGroupRepo struct{ db *memDB }

func (r *fakeGroupRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	group, ok := r.db.groups[id]
	if !ok {
		return nil, nil
	}
	return &group, nil
}

func (r *fakeGroupRepo) GetByCourse(ctx context.Context, courseID int64) ([]models.GroupWithSubmission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.GroupWithSubmission
	for _, group := range r.db.groups {
		if group.CourseID != courseID {
			continue
		}
		row := models.GroupWithSubmission{Group: group}
		if submission, ok := r.db.submissions[group.ID]; ok {
			at := submission.SubmittedAt
			row.SubmittedAt = &at
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeGroupRepo) UpdateProfile(ctx context.Context, id, project, members string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	group := r.db.groups[id]
	group.Project = project
	group.Members = members
	r.db.groups[id] = group
	return nil
}

func (r *fakeGroupRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	group := r.db.groups[id]
	group.PasswordHash = passwordHash
	r.db.groups[id] = group
	return nil
}

func (r *fakeGroupRepo) ExistsOutsideCourse(ctx context.Context, id string, courseID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	group, ok := r.db.groups[id]
	return ok && group.CourseID != courseID, nil
}

func (r *fakeGroupRepo) ReplaceForCourse(ctx context.Context, courseID int64, groups []models.Group, deadline int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for groupID, group := range r.db.groups {
		if group.CourseID == courseID {
			delete(r.db.groups, groupID)
			delete(r.db.submissions, groupID)
		}
	}
	for _, group := range groups {
		group.CourseID = courseID
		group.Project = "-"
		group.SubmissionStatus = models.SubmissionStatusNotSubmitted.String()
		r.db.groups[group.ID] = group
	}
	course := r.db.courses[courseID]
	course.Deadline = &deadline
	course.RosterStatus = models.RosterStatusImported.String()
	r.db.courses[courseID] = course
	return nil
}

type fakeSubmissionRepo struct{ db *memDB }

func (r *fakeSubmissionRepo) GetByGroupID(ctx context.Context, groupID string) (*models.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	submission, ok := r.db.submissions[groupID]
	if !ok {
		return nil, nil
	}
	return &submission, nil
}

func (r *fakeSubmissionRepo) GetByCourse(ctx context.Context, courseID int64, limit int) ([]models.SubmissionWithGroup, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.SubmissionWithGroup
	for _, submission := range r.db.submissions {
		if submission.CourseID != courseID {
			continue
		}
		group := r.db.groups[submission.GroupID]
		out = append(out, models.SubmissionWithGroup{
			GroupID:     submission.GroupID,
			Members:     group.Members,
			Project:     group.Project,
			SubmittedAt: submission.SubmittedAt,
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.submissions[submission.GroupID]
	created := !ok
	if ok {
		submission.ID = existing.ID
	}
	r.db.submissions[submission.GroupID] = *submission
	group := r.db.groups[submission.GroupID]
	group.SubmissionStatus = models.SubmissionStatusSubmitted.String()
	r.db.groups[submission.GroupID] = group
	return created, nil
}

func (r *fakeSubmissionRepo) DeleteWithStatusReset(ctx context.Context, groupID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.submissions, groupID)
	group := r.db.groups[groupID]
	group.SubmissionStatus = models.SubmissionStatusNotSubmitted.String()
	r.db.groups[groupID] = group
	return nil
}

type fakePackageRepo struct{ db *memDB }

func (r *fakePackageRepo) Get(ctx context.Context, courseID int64) (*models.PackageStatus, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	packaged, ok := r.db.packages[courseID]
	if !ok {
		return nil, nil
	}
	return &models.PackageStatus{CourseID: courseID, Packaged: packaged}, nil
}

func (r *fakePackageRepo) SetPackaged(ctx context.Context, courseID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.packages[courseID] = true
	return nil
}

func (r *fakePackageRepo) SetNotPackaged(ctx context.Context, courseID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.packages[courseID] = false
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
