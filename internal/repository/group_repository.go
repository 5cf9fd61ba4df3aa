package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByCourse(ctx context.Context, courseID int64) ([]models.GroupWithSubmission, error)
	UpdateProfile(ctx context.Context, id, project, members string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ExistsOutsideCourse(ctx context.Context, id string, courseID int64) (bool, error)
	ReplaceForCourse(ctx context.Context, courseID int64, groups []models.Group, deadline int64) error
}

type groupRepository struct {
	*PostgresRepository
}

func NewGroupRepository(db *sql.DB, logger zerolog.Logger) GroupRepository {
	return &groupRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, password_hash, members, project, course_id, submission_status
		FROM groups
		WHERE id = $1
	`

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.PasswordHash,
		&group.Members,
		&group.Project,
		&group.CourseID,
		&group.SubmissionStatus,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return group, err
}

func (r *groupRepository) GetByCourse(ctx context.Context, courseID int64) ([]models.GroupWithSubmission, error) {
	query := `
		SELECT
			g.id, g.password_hash, g.members, g.project, g.course_id, g.submission_status,
			s.submitted_at
		FROM groups g
		LEFT JOIN submissions s ON g.id = s.group_id
		WHERE g.course_id = $1
		ORDER BY g.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupWithSubmission
	for rows.Next() {
		var group models.GroupWithSubmission
		err := rows.Scan(
			&group.ID,
			&group.PasswordHash,
			&group.Members,
			&group.Project,
			&group.CourseID,
			&group.SubmissionStatus,
			&group.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (r *groupRepository) UpdateProfile(ctx context.Context, id, project, members string) error {
	query := `UPDATE groups SET project = $1, members = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, project, members, id)
	return err
}

func (r *groupRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE groups SET password_hash = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, passwordHash, id)
	return err
}

// ExistsOutsideCourse reports whether the id is already taken by a group in a
// different course. The importing course's own roster is about to be replaced,
// so it never counts as a collision.
func (r *groupRepository) ExistsOutsideCourse(ctx context.Context, id string, courseID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1 AND course_id != $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id, courseID).Scan(&exists)
	return exists, err
}

// ReplaceForCourse swaps the course's entire roster in one transaction:
// submission records go first, then the old groups, then the new set, and the
// course row gets its deadline and imported flag. Either everything lands or
// nothing does.
func (r *groupRepository) ReplaceForCourse(ctx context.Context, courseID int64, groups []models.Group, deadline int64) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer finishTx(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE course_id = $1`, courseID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE course_id = $1`, courseID); err != nil {
		return err
	}

	insert := `
		INSERT INTO groups (id, password_hash, members, project, course_id, submission_status)
		VALUES ($1, $2, $3, '-', $4, $5)
	`
	for _, group := range groups {
		if _, err := tx.ExecContext(ctx, insert,
			group.ID,
			group.PasswordHash,
			group.Members,
			courseID,
			models.SubmissionStatusNotSubmitted.String(),
		); err != nil {
			return err
		}
	}

	update := `UPDATE courses SET deadline = $1, roster_status = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, update, deadline, models.RosterStatusImported.String(), courseID); err != nil {
		return err
	}

	return tx.Commit()
}
