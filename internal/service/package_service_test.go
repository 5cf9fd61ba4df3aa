package service

import (
	"archive/zip"
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/submission-service/internal/storage"
)

type packageFixture struct {
	db      *memDB
	store   *storage.LocalProvider
	service PackageService
}

func newPackageFixture(t *testing.T) *packageFixture {
	t.Helper()

	db := newMemDB()
	store, err := storage.NewLocalProvider(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	service := NewPackageService(
		&fakePackageRepo{db: db},
		store,
		nil,
		t.TempDir(),
		newFakeClock(time.Now()),
		zerolog.Nop(),
	)

	return &packageFixture{db: db, store: store, service: service}
}

func (f *packageFixture) saveArtifact(t *testing.T, courseID int64, groupID, name, content string) {
	t.Helper()
	err := f.store.Save(context.Background(), courseID, groupID, name,
		strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
}

func waitPackaged(t *testing.T, service PackageService, courseID int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		ok, err := service.Status(context.Background(), courseID)
		return err == nil && ok
	}, 5*time.Second, 10*time.Millisecond, "archive build did not finish")
}

func TestPackageService_BuildProducesArchive(t *testing.T) {
	f := newPackageFixture(t)
	f.saveArtifact(t, 7, "g1", "report.pdf", "g1 report")
	f.saveArtifact(t, 7, "g1", "code.zip", "g1 code")
	f.saveArtifact(t, 7, "g2", "report.pdf", "g2 report")

	f.service.RequestBuild(7)
	waitPackaged(t, f.service, 7)

	reader, err := zip.OpenReader(f.service.ArchivePath(7))
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{"g1/report.pdf", "g1/code.zip", "g2/report.pdf"}, names)
}

func TestPackageService_BuildEmptyCourse(t *testing.T) {
	f := newPackageFixture(t)

	// A course with no uploads still packages into a valid, empty zip.
	f.service.RequestBuild(3)
	waitPackaged(t, f.service, 3)

	reader, err := zip.OpenReader(f.service.ArchivePath(3))
	require.NoError(t, err)
	defer reader.Close()
	assert.Empty(t, reader.File)
}

func TestPackageService_StatusRequiresFileOnDisk(t *testing.T) {
	f := newPackageFixture(t)
	f.saveArtifact(t, 7, "g1", "report.pdf", "g1 report")

	f.service.RequestBuild(7)
	waitPackaged(t, f.service, 7)

	// The flag alone is not enough: losing the file reads as not packaged.
	require.NoError(t, os.Remove(f.service.ArchivePath(7)))

	ok, err := f.service.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPackageService_StatusUnknownCourse(t *testing.T) {
	f := newPackageFixture(t)

	ok, err := f.service.Status(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPackageService_Delete(t *testing.T) {
	f := newPackageFixture(t)
	f.saveArtifact(t, 7, "g1", "report.pdf", "g1 report")

	f.service.RequestBuild(7)
	waitPackaged(t, f.service, 7)

	require.NoError(t, f.service.Delete(context.Background(), 7))

	_, err := os.Stat(f.service.ArchivePath(7))
	assert.True(t, os.IsNotExist(err))

	ok, err := f.service.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	require.NoError(t, f.service.Delete(context.Background(), 7))
}

// gatedListProvider stalls inside ListCourse until released, keeping a build
// in flight for as long as the test needs.
type gatedListProvider struct {
	*storage.LocalProvider
	release   chan struct{}
	listCalls atomic.Int32
}

func (p *gatedListProvider) ListCourse(ctx context.Context, courseID int64) ([]storage.Object, error) {
	p.listCalls.Add(1)
	<-p.release
	return p.LocalProvider.ListCourse(ctx, courseID)
}

func TestPackageService_CoalescesConcurrentBuilds(t *testing.T) {
	db := newMemDB()
	local, err := storage.NewLocalProvider(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	provider := &gatedListProvider{LocalProvider: local, release: make(chan struct{})}

	service := NewPackageService(
		&fakePackageRepo{db: db},
		provider,
		nil,
		t.TempDir(),
		newFakeClock(time.Now()),
		zerolog.Nop(),
	)

	err = local.Save(context.Background(), 7, "g1", "report.pdf", strings.NewReader("r"), 1)
	require.NoError(t, err)

	service.RequestBuild(7)
	require.Eventually(t, func() bool {
		return provider.listCalls.Load() == 1
	}, 5*time.Second, 5*time.Millisecond, "first build never started")

	// Triggers while the build is stalled must join it, not start their own.
	for i := 0; i < 3; i++ {
		service.RequestBuild(7)
	}

	close(provider.release)
	waitPackaged(t, service, 7)

	assert.Equal(t, int32(1), provider.listCalls.Load(), "concurrent triggers must coalesce into one build")

	reader, err := zip.OpenReader(service.ArchivePath(7))
	require.NoError(t, err)
	defer reader.Close()
	require.Len(t, reader.File, 1)
	assert.Equal(t, "g1/report.pdf", reader.File[0].Name)
}

func TestPackageService_RebuildReplacesArchive(t *testing.T) {
	f := newPackageFixture(t)
	f.saveArtifact(t, 7, "g1", "report.pdf", "g1 report")

	f.service.RequestBuild(7)
	waitPackaged(t, f.service, 7)

	f.saveArtifact(t, 7, "g2", "main.mp4", "g2 video")

	require.NoError(t, f.service.Delete(context.Background(), 7))
	f.service.RequestBuild(7)
	waitPackaged(t, f.service, 7)

	reader, err := zip.OpenReader(f.service.ArchivePath(7))
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{"g1/report.pdf", "g2/main.mp4"}, names)
}
