package models

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

// Enrollment statuses.
const (
	EnrollmentStatusActive   EnrollmentStatus = "active"
	EnrollmentStatusInactive EnrollmentStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	return s == EnrollmentStatusActive || s == EnrollmentStatusInactive
}

// Enrollment links a student to a class.
type Enrollment struct {
	Base
	StudentID string           `json:"studentId"`
	ClassID   string           `json:"classId"`
	Status    EnrollmentStatus `json:"status"`
}

// EnrollmentPatch lists the mutable enrollment fields.
type EnrollmentPatch struct {
	Status *EnrollmentStatus
}
