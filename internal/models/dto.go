package models

type CreateCourseRequest struct {
	Name       string `json:"name"`
	SchoolYear string `json:"school_year"`
	Term       string `json:"term"`
	Grade      string `json:"grade"`
}

type UpdateCourseRequest struct {
	CourseID   int64  `json:"course_id"`
	Name       string `json:"name"`
	SchoolYear string `json:"school_year"`
	Term       string `json:"term"`
	Grade      string `json:"grade"`
}

// DeadlineParts carries the calendar form fields a deadline is assembled from.
type DeadlineParts struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type SubmitResponse struct {
	GroupID      string `json:"group_id"`
	CourseID     int64  `json:"course_id"`
	SubmittedAt  int64  `json:"submitted_at"`
	Resubmission bool   `json:"resubmission"`
}

type LoginRequest struct {
	GroupID  string `json:"group_id"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	GroupID     string `json:"group_id"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UpdateProfileRequest struct {
	GroupID string   `json:"group_id"`
	Project string   `json:"project"`
	Members []string `json:"members"`
}

type ResetAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
