package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// AttendanceEntry is the status of one student on the recorded day.
type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

// RecordAttendanceRequest records a class session for a calendar day (YYYY-MM-DD).
type RecordAttendanceRequest struct {
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceResponse is the API view of an attendance record.
type AttendanceResponse struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAttendanceResponses maps attendance records.
func NewAttendanceResponses(items []models.Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(items))
	for _, a := range items {
		out = append(out, AttendanceResponse{
			ID:        a.ID,
			ClassID:   a.ClassID,
			StudentID: a.StudentID,
			Date:      a.Date,
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return out
}
