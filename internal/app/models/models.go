package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleFaculty RoleType = "faculty"
	RoleAdmin   RoleType = "admin"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// CanSelfRegister reports whether accounts of this role may be created through public registration
func (r RoleType) CanSelfRegister() bool {
	return r == RoleStudent || r == RoleFaculty
}

// AvailabilityStatus is the published presence of a faculty member
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "Available"
	StatusInClass   AvailabilityStatus = "In Class"
	StatusOffline   AvailabilityStatus = "Offline"
)

// AvailabilityStatuses lists every availability value in display order
var AvailabilityStatuses = []AvailabilityStatus{StatusAvailable, StatusInClass, StatusOffline}

func (s AvailabilityStatus) Valid() bool {
	for _, v := range AvailabilityStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ConsultationStatus is the lifecycle state of a consultation
type ConsultationStatus string

const (
	ConsultationScheduled ConsultationStatus = "Scheduled"
	ConsultationCancelled ConsultationStatus = "Cancelled"
	ConsultationCompleted ConsultationStatus = "Completed"
)

// ConsultationStatuses lists every lifecycle state
var ConsultationStatuses = []ConsultationStatus{ConsultationScheduled, ConsultationCancelled, ConsultationCompleted}

func (s ConsultationStatus) Valid() bool {
	for _, v := range ConsultationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s ConsultationStatus) Terminal() bool {
	return s == ConsultationCancelled || s == ConsultationCompleted
}

// CanTransitionTo reports whether s -> next is an allowed lifecycle move.
// Only Scheduled consultations move, and only into a terminal state.
func (s ConsultationStatus) CanTransitionTo(next ConsultationStatus) bool {
	return s == ConsultationScheduled && next.Terminal()
}
