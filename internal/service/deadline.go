package service

import (
	"github.com/coursedeck/submission-service/internal/models"
)

// DeadlineGate decides whether a course is still accepting uploads. The
// decision is recomputed on every call because an admin can move the deadline
// between a page load and the actual upload.
type DeadlineGate struct {
	clock Clock
}

func NewDeadlineGate(clock Clock) *DeadlineGate {
	return &DeadlineGate{clock: clock}
}

// IsAccepting fails closed: a course with no deadline (roster never imported)
// rejects submissions. Otherwise accepting iff now < deadline.
func (g *DeadlineGate) IsAccepting(course *models.Course) bool {
	if course == nil || course.Deadline == nil {
		return false
	}
	return g.clock.Now().Unix() < *course.Deadline
}
