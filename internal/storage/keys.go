package storage

// Namespace prefixes every key the application writes.
const Namespace = "@aluno_monitoramento:"

// Keys is the persisted layout: one key per collection plus the session singleton.
type Keys struct {
	Users       string
	Classes     string
	Enrollments string
	Attendances string
	Grades      string
	Comments    string
	Session     string
}

// DefaultKeys returns the fixed key layout.
func DefaultKeys() Keys {
	return Keys{
		Users:       Namespace + "users",
		Classes:     Namespace + "classes",
		Enrollments: Namespace + "enrollments",
		Attendances: Namespace + "attendances",
		Grades:      Namespace + "grades",
		Comments:    Namespace + "comments",
		Session:     Namespace + "session",
	}
}

// All lists every key, session included.
func (k Keys) All() []string {
	return []string{k.Users, k.Classes, k.Enrollments, k.Attendances, k.Grades, k.Comments, k.Session}
}
