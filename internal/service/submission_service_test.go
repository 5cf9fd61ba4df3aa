package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/submission-service/internal/models"
	"github.com/coursedeck/submission-service/internal/storage"
)

type submissionFixture struct {
	db      *memDB
	clock   *fakeClock
	store   *storage.LocalProvider
	root    string
	service SubmissionService
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	db := newMemDB()
	clock := newFakeClock(time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC))
	root := t.TempDir()

	store, err := storage.NewLocalProvider(root, zerolog.Nop())
	require.NoError(t, err)

	service := NewSubmissionService(
		&fakeGroupRepo{db: db},
		&fakeCourseRepo{db: db},
		&fakeSubmissionRepo{db: db},
		store,
		NewDeadlineGate(clock),
		clock,
		nil,
		zerolog.Nop(),
	)

	return &submissionFixture{db: db, clock: clock, store: store, root: root, service: service}
}

// seedCourse registers a course with a deadline one hour past the fixture
// clock and one group enrolled in it.
func (f *submissionFixture) seedCourse(t *testing.T, groupID string) int64 {
	t.Helper()

	deadline := f.clock.Now().Add(time.Hour).Unix()
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.nextCourseID++
	courseID := f.db.nextCourseID
	f.db.courses[courseID] = models.Course{
		ID:           courseID,
		Name:         "Operating Systems",
		RosterStatus: models.RosterStatusImported.String(),
		Deadline:     &deadline,
	}
	f.db.groups[groupID] = models.Group{
		ID:               groupID,
		CourseID:         courseID,
		Members:          "alice_bob",
		Project:          "-",
		SubmissionStatus: models.SubmissionStatusNotSubmitted.String(),
	}
	return courseID
}

func artifactsOf(kinds ...models.ArtifactKind) []models.Artifact {
	out := make([]models.Artifact, 0, len(kinds))
	for _, kind := range kinds {
		content := "payload for " + string(kind)
		out = append(out, models.Artifact{
			Kind:    kind,
			Content: strings.NewReader(content),
			Size:    int64(len(content)),
		})
	}
	return out
}

func TestSubmissionService_RecordUnknownGroup(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.service.Record(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSubmissionService_RecordAfterDeadline(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedCourse(t, "g1")
	f.clock.Advance(2 * time.Hour)

	_, err := f.service.Record(context.Background(), "g1", artifactsOf(models.ArtifactReport))
	assert.ErrorIs(t, err, ErrDeadlinePassed)

	ok, err := f.service.HasSubmitted(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, ok, "rejected upload must not leave a submission row")
}

func TestSubmissionService_RecordStoresArtifactsAndFlipsStatus(t *testing.T) {
	f := newSubmissionFixture(t)
	courseID := f.seedCourse(t, "g1")

	resp, err := f.service.Record(context.Background(), "g1",
		artifactsOf(models.ArtifactReport, models.ArtifactCode))
	require.NoError(t, err)
	assert.False(t, resp.Resubmission)
	assert.Equal(t, courseID, resp.CourseID)
	assert.Equal(t, f.clock.Now().Unix(), resp.SubmittedAt)

	// Artifacts land under courseId/groupId with the fixed slot filenames.
	assert.FileExists(t, filepath.Join(f.root, "1", "g1", "report.pdf"))
	assert.FileExists(t, filepath.Join(f.root, "1", "g1", "code.zip"))

	f.db.mu.Lock()
	group := f.db.groups["g1"]
	f.db.mu.Unlock()
	assert.Equal(t, models.SubmissionStatusSubmitted.String(), group.SubmissionStatus)

	ok, err := f.service.HasSubmitted(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmissionService_ResubmissionAdvancesTimestamp(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedCourse(t, "g1")

	first, err := f.service.Record(context.Background(), "g1", artifactsOf(models.ArtifactReport))
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	second, err := f.service.Record(context.Background(), "g1", artifactsOf(models.ArtifactReport))
	require.NoError(t, err)
	assert.True(t, second.Resubmission)
	assert.Greater(t, second.SubmittedAt, first.SubmittedAt)

	// Still exactly one submission for the group.
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	assert.Len(t, f.db.submissions, 1)
}

func TestSubmissionService_RecordRejectsUnknownSlot(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedCourse(t, "g1")

	_, err := f.service.Record(context.Background(), "g1", []models.Artifact{{
		Kind:    models.ArtifactKind("tarball"),
		Content: strings.NewReader("x"),
		Size:    1,
	}})
	assert.Error(t, err)
}

func TestSubmissionService_RetractRoundTrip(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedCourse(t, "g1")

	_, err := f.service.Record(context.Background(), "g1", artifactsOf(models.ArtifactVideo))
	require.NoError(t, err)

	require.NoError(t, f.service.Retract(context.Background(), "g1"))

	ok, err := f.service.HasSubmitted(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	f.db.mu.Lock()
	group := f.db.groups["g1"]
	f.db.mu.Unlock()
	assert.Equal(t, models.SubmissionStatusNotSubmitted.String(), group.SubmissionStatus)

	_, err = os.Stat(filepath.Join(f.root, "1", "g1"))
	assert.True(t, os.IsNotExist(err), "artifact subtree must be gone")

	// Retracting again is a clean no-op on storage and submission state.
	require.NoError(t, f.service.Retract(context.Background(), "g1"))
}

func TestSubmissionService_RetractUnknownGroup(t *testing.T) {
	f := newSubmissionFixture(t)

	err := f.service.Retract(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
