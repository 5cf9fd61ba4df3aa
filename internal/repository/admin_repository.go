package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, oldUsername, newUsername, passwordHash string) error
}

type adminRepository struct {
	*PostgresRepository
}

func NewAdminRepository(db *sql.DB, logger zerolog.Logger) AdminRepository {
	return &adminRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	query := `SELECT username, password_hash FROM admins WHERE username = $1`

	admin := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&admin.Username, &admin.PasswordHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return admin, err
}

func (r *adminRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `INSERT INTO admins (username, password_hash) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, admin.Username, admin.PasswordHash)
	return err
}

func (r *adminRepository) Update(ctx context.Context, oldUsername, newUsername, passwordHash string) error {
	query := `UPDATE admins SET username = $1, password_hash = $2 WHERE username = $3`
	_, err := r.db.ExecContext(ctx, query, newUsername, passwordHash, oldUsername)
	return err
}
