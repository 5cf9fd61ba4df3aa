package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// LocalProvider keeps artifacts as plain files under
// root/{courseId}/{groupId}/{filename}.
type LocalProvider struct {
	root   string
	logger zerolog.Logger
}

func NewLocalProvider(root string, logger zerolog.Logger) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}

	return &LocalProvider{
		root:   root,
		logger: logger,
	}, nil
}

func (p *LocalProvider) Save(ctx context.Context, courseID int64, groupID, name string, content io.Reader, size int64) error {
	dir := p.groupDir(courseID, groupID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create group directory: %w", err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}

	p.logger.Debug().
		Int64("course_id", courseID).
		Str("group_id", groupID).
		Str("file", name).
		Msg("Artifact saved")

	return nil
}

func (p *LocalProvider) Open(ctx context.Context, courseID int64, groupID, name string) (io.ReadCloser, int64, error) {
	path := filepath.Join(p.groupDir(courseID, groupID), name)

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open artifact: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat artifact: %w", err)
	}

	return file, stat.Size(), nil
}

// ListCourse walks the course subtree. A missing subtree means no uploads yet
// and yields an empty list.
func (p *LocalProvider) ListCourse(ctx context.Context, courseID int64) ([]Object, error) {
	courseDir := p.courseDir(courseID)
	if _, err := os.Stat(courseDir); os.IsNotExist(err) {
		return nil, nil
	}

	var objects []Object
	err := filepath.WalkDir(courseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(courseDir, path)
		if err != nil {
			return err
		}

		groupID := filepath.Dir(rel)
		if groupID == "." {
			// Stray file directly under the course dir, not a group artifact.
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		objects = append(objects, Object{
			GroupID: groupID,
			Name:    d.Name(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk course tree: %w", err)
	}

	return objects, nil
}

func (p *LocalProvider) RemoveGroup(ctx context.Context, courseID int64, groupID string) error {
	return os.RemoveAll(p.groupDir(courseID, groupID))
}

func (p *LocalProvider) RemoveCourse(ctx context.Context, courseID int64) error {
	return os.RemoveAll(p.courseDir(courseID))
}

func (p *LocalProvider) courseDir(courseID int64) string {
	return filepath.Join(p.root, strconv.FormatInt(courseID, 10))
}

func (p *LocalProvider) groupDir(courseID int64, groupID string) string {
	return filepath.Join(p.courseDir(courseID), groupID)
}
