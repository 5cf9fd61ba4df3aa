package models

import "strings"

// memberSeparator joins the ordered member names into the single column the
// roster import writes.
const memberSeparator = "_"

type Group struct {
	ID               string `json:"id" db:"id"`
	PasswordHash     string `json:"-" db:"password_hash"`
	Members          string `json:"members" db:"members"`
	Project          string `json:"project" db:"project"`
	CourseID         int64  `json:"course_id" db:"course_id"`
	SubmissionStatus string `json:"submission_status" db:"submission_status"` // submitted, not_submitted
}

type GroupWithSubmission struct {
	Group
	SubmittedAt *int64 `json:"submitted_at,omitempty" db:"submitted_at"`
}

type SubmissionStatus string

const (
	SubmissionStatusNotSubmitted SubmissionStatus = "not_submitted"
	SubmissionStatusSubmitted    SubmissionStatus = "submitted"
)

func (ss SubmissionStatus) String() string {
	return string(ss)
}

func (g *Group) MemberList() []string {
	if g.Members == "" {
		return nil
	}
	return strings.Split(g.Members, memberSeparator)
}

func JoinMembers(members []string) string {
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m != "" {
			kept = append(kept, m)
		}
	}
	return strings.Join(kept, memberSeparator)
}
