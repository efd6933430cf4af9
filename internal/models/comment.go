package models

// Comment is a message posted in a class.
type Comment struct {
	Base
	ClassID     string `json:"classId"`
	StudentID   string `json:"studentId"`
	ProfessorID string `json:"professorId"`
	AuthorID    string `json:"authorId"`
	Comment     string `json:"comment"`
}

// CommentPatch lists the mutable comment fields.
type CommentPatch struct {
	Comment *string
}
