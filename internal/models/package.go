package models

type PackageStatus struct {
	CourseID int64 `json:"course_id" db:"course_id"`
	Packaged bool  `json:"packaged" db:"packaged"`
}
