package models

type Course struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	SchoolYear   string `json:"school_year" db:"school_year"`
	Term         string `json:"term" db:"term"`
	Grade        string `json:"grade" db:"grade"`
	RosterStatus string `json:"roster_status" db:"roster_status"` // imported, not_imported
	Deadline     *int64 `json:"deadline,omitempty" db:"deadline"` // unix seconds, set on roster import
}

type CourseWithStats struct {
	Course
	GroupCount     int `json:"group_count" db:"group_count"`
	SubmittedCount int `json:"submitted_count" db:"submitted_count"`
}

type RosterStatus string

const (
	RosterStatusNotImported RosterStatus = "not_imported"
	RosterStatusImported    RosterStatus = "imported"
)

func (rs RosterStatus) String() string {
	return string(rs)
}

func (c *Course) RosterImported() bool {
	return c.RosterStatus == RosterStatusImported.String()
}
