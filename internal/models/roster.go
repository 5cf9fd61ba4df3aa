package models

// RosterRow is one line of the roster CSV an administrator uploads. The header
// must carry exactly these two columns.
type RosterRow struct {
	GroupID string `csv:"group id"`
	Members string `csv:"group member"`
}

// CourseRow is one line of the bulk course CSV.
type CourseRow struct {
	Name       string `csv:"courseName"`
	SchoolYear string `csv:"schoolYear"`
	Term       string `csv:"term"`
	Grade      string `csv:"grade"`
}
