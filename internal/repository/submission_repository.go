package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

type SubmissionRepository interface {
	GetByGroupID(ctx context.Context, groupID string) (*models.Submission, error)
	GetByCourse(ctx context.Context, courseID int64, limit int) ([]models.SubmissionWithGroup, error)
	Upsert(ctx context.Context, submission *models.Submission) (bool, error)
	DeleteWithStatusReset(ctx context.Context, groupID string) error
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) GetByGroupID(ctx context.Context, groupID string) (*models.Submission, error) {
	query := `
		SELECT id, group_id, course_id, submitted_at
		FROM submissions
		WHERE group_id = $1
	`

	submission := &models.Submission{}
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(
		&submission.ID,
		&submission.GroupID,
		&submission.CourseID,
		&submission.SubmittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return submission, err
}

func (r *submissionRepository) GetByCourse(ctx context.Context, courseID int64, limit int) ([]models.SubmissionWithGroup, error) {
	query := `
		SELECT s.group_id, g.members, g.project, s.submitted_at
		FROM submissions s
		JOIN groups g ON s.group_id = g.id
		WHERE s.course_id = $1
		ORDER BY s.submitted_at DESC
	`

	args := []interface{}{courseID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithGroup
	for rows.Next() {
		var submission models.SubmissionWithGroup
		err := rows.Scan(
			&submission.GroupID,
			&submission.Members,
			&submission.Project,
			&submission.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	return submissions, rows.Err()
}

// Upsert records a submission and flips the group's status in the same
// transaction, so the submissions table and the derived status column can
// never disagree. Returns true when this was the group's first submission.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) (bool, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer finishTx(tx)

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM submissions WHERE group_id = $1`, submission.GroupID,
	).Scan(&existingID)

	created := false
	switch err {
	case sql.ErrNoRows:
		created = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO submissions (id, group_id, course_id, submitted_at) VALUES ($1, $2, $3, $4)`,
			submission.ID, submission.GroupID, submission.CourseID, submission.SubmittedAt,
		); err != nil {
			return false, err
		}
	case nil:
		submission.ID = existingID
		if _, err := tx.ExecContext(ctx,
			`UPDATE submissions SET submitted_at = $1 WHERE group_id = $2`,
			submission.SubmittedAt, submission.GroupID,
		); err != nil {
			return false, err
		}
	default:
		return false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE groups SET submission_status = $1 WHERE id = $2`,
		models.SubmissionStatusSubmitted.String(), submission.GroupID,
	); err != nil {
		return false, err
	}

	return created, tx.Commit()
}

// DeleteWithStatusReset removes the submission record and flips the group back
// to not_submitted in one transaction. Safe to call when no record exists.
func (r *submissionRepository) DeleteWithStatusReset(ctx context.Context, groupID string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer finishTx(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE group_id = $1`, groupID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE groups SET submission_status = $1 WHERE id = $2`,
		models.SubmissionStatusNotSubmitted.String(), groupID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
