package scheduling

import (
	"github.com/clinic/clinic/pkg/apperrors"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ParseStatus returns a validation error unless s names one of the four
// statuses exactly.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", apperrors.Validation("invalid status %q: must be one of scheduled, completed, cancelled, no_show", s)
	}
	return st, nil
}

// CanTransition reports whether an appointment in from may move to to.
// Every valid status is reachable from every other, including itself.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}
