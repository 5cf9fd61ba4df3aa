package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	CreateBatch(ctx context.Context, courses []models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context) ([]models.CourseWithStats, error)
	Update(ctx context.Context, course *models.Course) error
	SetDeadline(ctx context.Context, id int64, deadline int64) error
	RemoveCascade(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type courseRepository struct {
	*PostgresRepository
}

func NewCourseRepository(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (name, school_year, term, grade, roster_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return r.db.QueryRowContext(ctx, query,
		course.Name,
		course.SchoolYear,
		course.Term,
		course.Grade,
		models.RosterStatusNotImported.String(),
	).Scan(&course.ID)
}

func (r *courseRepository) CreateBatch(ctx context.Context, courses []models.Course) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer finishTx(tx)

	query := `
		INSERT INTO courses (name, school_year, term, grade, roster_status)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, course := range courses {
		if _, err := tx.ExecContext(ctx, query,
			course.Name,
			course.SchoolYear,
			course.Term,
			course.Grade,
			models.RosterStatusNotImported.String(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT id, name, school_year, term, grade, roster_status, deadline
		FROM courses
		WHERE id = $1
	`

	course := &models.Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.SchoolYear,
		&course.Term,
		&course.Grade,
		&course.RosterStatus,
		&course.Deadline,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return course, err
}

func (r *courseRepository) GetAll(ctx context.Context) ([]models.CourseWithStats, error) {
	query := `
		SELECT
			c.id, c.name, c.school_year, c.term, c.grade, c.roster_status, c.deadline,
			COUNT(g.id) as group_count,
			COUNT(CASE WHEN g.submission_status = 'submitted' THEN 1 END) as submitted_count
		FROM courses c
		LEFT JOIN groups g ON c.id = g.course_id
		GROUP BY c.id
		ORDER BY c.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.CourseWithStats
	for rows.Next() {
		var course models.CourseWithStats
		err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.SchoolYear,
			&course.Term,
			&course.Grade,
			&course.RosterStatus,
			&course.Deadline,
			&course.GroupCount,
			&course.SubmittedCount,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET name = $1, school_year = $2, term = $3, grade = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		course.Name,
		course.SchoolYear,
		course.Term,
		course.Grade,
		course.ID,
	)

	return err
}

func (r *courseRepository) SetDeadline(ctx context.Context, id int64, deadline int64) error {
	query := `UPDATE courses SET deadline = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, deadline, id)
	return err
}

// RemoveCascade deletes the course and every row referencing it in a single
// transaction. Filesystem cleanup is the caller's problem and happens only
// after this commits.
func (r *courseRepository) RemoveCascade(ctx context.Context, id int64) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer finishTx(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE course_id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE course_id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM packages WHERE course_id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *courseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
