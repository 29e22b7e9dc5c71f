package enums

import "fmt"

// AssignmentStatus is the outcome recorded for an order-to-partner assignment.
type AssignmentStatus string

const (
	AssignmentStatusSuccess AssignmentStatus = "success"
	AssignmentStatusFailed  AssignmentStatus = "failed"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusSuccess,
	AssignmentStatusFailed,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
