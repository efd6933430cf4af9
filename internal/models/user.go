package models

// UserType is the role of an account.
type UserType string

// Account roles.
const (
	UserTypeProfessor UserType = "professor"
	UserTypeStudent   UserType = "aluno"
)

// Valid reports whether t is a known role.
func (t UserType) Valid() bool {
	return t == UserTypeProfessor || t == UserTypeStudent
}

// User is a professor or student account. The password is only ever stored hashed.
type User struct {
	Base
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"passwordHash"`
	Type         UserType `json:"type"`
}

// UserPatch lists the mutable user fields; nil means unchanged.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// Snapshot returns the session view of the user.
func (u User) Snapshot() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Type: u.Type}
}
