package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidStatusTransition is returned when an application is moved to a
// status its current status cannot reach.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// ---------------------------------------------------------------------------
// ApplicationStatus – lifecycle of a loan application
// ---------------------------------------------------------------------------

type ApplicationStatus struct {
	value string
}

const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusRejected   = "rejected"
)

var (
	StatusPending    = ApplicationStatus{value: statusPending}
	StatusProcessing = ApplicationStatus{value: statusProcessing}
	StatusCompleted  = ApplicationStatus{value: statusCompleted}
	StatusRejected   = ApplicationStatus{value: statusRejected}
)

var validApplicationStatuses = map[string]ApplicationStatus{
	statusPending:    StatusPending,
	statusProcessing: StatusProcessing,
	statusCompleted:  StatusCompleted,
	statusRejected:   StatusRejected,
}

// completed and rejected may re-enter processing on recalculation. A run
// interrupted while processing may be restarted; the repository version check
// keeps two live runs from both saving.
var applicationTransitions = map[string][]string{
	statusPending:    {statusProcessing, statusRejected},
	statusProcessing: {statusProcessing, statusCompleted, statusRejected, statusPending},
	statusCompleted:  {statusProcessing},
	statusRejected:   {statusProcessing},
}

// NewApplicationStatus creates an ApplicationStatus from a raw string.
func NewApplicationStatus(s string) (ApplicationStatus, error) {
	v, ok := validApplicationStatuses[s]
	if !ok {
		return ApplicationStatus{}, fmt.Errorf("invalid application status: %q", s)
	}
	return v, nil
}

// CanTransitionTo reports whether moving to next is a legal transition.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s.value] {
		if allowed == next.value {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) String() string                     { return s.value }
func (s ApplicationStatus) IsZero() bool                       { return s.value == "" }
func (s ApplicationStatus) Equal(other ApplicationStatus) bool { return s.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (s ApplicationStatus) MarshalText() ([]byte, error) { return []byte(s.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ApplicationStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ApplicationStatus{}
		return nil
	}
	v, err := NewApplicationStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
