package models

// DateLayout is the calendar-day format of attendance dates.
const DateLayout = "2006-01-02"

// AttendanceStatus records how a student attended one class session.
type AttendanceStatus string

// Attendance statuses.
const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance is one student's presence record for a class on a given day.
type Attendance struct {
	Base
	ClassID   string           `json:"classId"`
	StudentID string           `json:"studentId"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
}

// AttendancePatch lists the mutable attendance fields.
type AttendancePatch struct {
	Status *AttendanceStatus
}
