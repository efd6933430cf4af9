package models

// Class is a turma owned by one professor.
type Class struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description"`
	ProfessorID string `json:"professorId"`
	MaxStudents int    `json:"maxStudents"`
}

// ClassPatch lists the fields the owning professor may change.
type ClassPatch struct {
	Name        *string
	Description *string
	MaxStudents *int
}
