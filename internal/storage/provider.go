package storage

import (
	"context"
	"io"
)

// Object is one stored artifact, addressed by its owning group and slot
// filename. The archive builder preserves this as the groupID/name entry path.
type Object struct {
	GroupID string
	Name    string
	Size    int64
}

// Provider owns the per-course artifact tree. Uploads overwrite in place, and
// removals of absent subtrees are no-ops.
type Provider interface {
	Save(ctx context.Context, courseID int64, groupID, name string, content io.Reader, size int64) error
	Open(ctx context.Context, courseID int64, groupID, name string) (io.ReadCloser, int64, error)
	ListCourse(ctx context.Context, courseID int64) ([]Object, error)
	RemoveGroup(ctx context.Context, courseID int64, groupID string) error
	RemoveCourse(ctx context.Context, courseID int64) error
}
