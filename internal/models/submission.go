package models

type Submission struct {
	ID          string `json:"id" db:"id"`
	GroupID     string `json:"group_id" db:"group_id"`
	CourseID    int64  `json:"course_id" db:"course_id"`
	SubmittedAt int64  `json:"submitted_at" db:"submitted_at"` // unix seconds, advanced on resubmission
}

// SubmissionWithGroup is the per-course listing row: submission joined with
// the owning group's roster fields.
type SubmissionWithGroup struct {
	GroupID     string `json:"group_id" db:"group_id"`
	Members     string `json:"members" db:"members"`
	Project     string `json:"project" db:"project"`
	SubmittedAt int64  `json:"submitted_at" db:"submitted_at"`
}
