package models

// Grade bounds.
const (
	MinGrade = 0.0
	MaxGrade = 10.0
)

// Grade is a mark a professor gave a student in a class.
type Grade struct {
	Base
	ClassID     string  `json:"classId"`
	StudentID   string  `json:"studentId"`
	Grade       float64 `json:"grade"`
	Description string  `json:"description"`
}

// GradePatch lists the mutable grade fields.
type GradePatch struct {
	Grade       *float64
	Description *string
}
