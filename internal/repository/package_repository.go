package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

type PackageRepository interface {
	Get(ctx context.Context, courseID int64) (*models.PackageStatus, error)
	SetPackaged(ctx context.Context, courseID int64) error
	SetNotPackaged(ctx context.Context, courseID int64) error
}

type packageRepository struct {
	*PostgresRepository
}

func NewPackageRepository(db *sql.DB, logger zerolog.Logger) PackageRepository {
	return &packageRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *packageRepository) Get(ctx context.Context, courseID int64) (*models.PackageStatus, error) {
	query := `SELECT course_id, packaged FROM packages WHERE course_id = $1`

	status := &models.PackageStatus{}
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(&status.CourseID, &status.Packaged)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return status, err
}

func (r *packageRepository) SetPackaged(ctx context.Context, courseID int64) error {
	return r.set(ctx, courseID, true)
}

// SetNotPackaged is idempotent: it writes the row even when no build ever ran,
// so deleting a never-built archive is a no-op rather than an error.
func (r *packageRepository) SetNotPackaged(ctx context.Context, courseID int64) error {
	return r.set(ctx, courseID, false)
}

func (r *packageRepository) set(ctx context.Context, courseID int64, packaged bool) error {
	query := `
		INSERT INTO packages (course_id, packaged)
		VALUES ($1, $2)
		ON CONFLICT (course_id) DO UPDATE SET packaged = $2
	`

	_, err := r.db.ExecContext(ctx, query, courseID, packaged)
	return err
}
