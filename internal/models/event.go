package models

type SubmissionReceivedEvent struct {
	GroupID      string `json:"group_id"`
	CourseID     int64  `json:"course_id"`
	SubmittedAt  int64  `json:"submitted_at"`
	Resubmission bool   `json:"resubmission"`
}

type PackageBuiltEvent struct {
	CourseID  int64  `json:"course_id"`
	Archive   string `json:"archive"`
	FileCount int    `json:"file_count"`
	Timestamp int64  `json:"timestamp"`
}
