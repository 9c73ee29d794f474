// Package person defines the identity capability shared by students and
// lecturers.
package person

import "strings"

// Role is the part a member plays in the university.
type Role string

const (
	RoleStudent  Role = "Student"
	RoleLecturer Role = "Lecturer"
)

// Member is anything with a personal identity.
type Member interface {
	ID() string
	Name() string
	Email() string
	Phone() string
	Role() Role
}

// Person holds identity and contact details. It is embedded by value in
// Student and Lecturer.
type Person struct {
	id    string
	name  string
	email string
	phone string
}

// New creates a Person. Phone may be empty.
func New(id, name, email, phone string) Person {
	return Person{
		id:    strings.TrimSpace(id),
		name:  strings.TrimSpace(name),
		email: strings.TrimSpace(email),
		phone: strings.TrimSpace(phone),
	}
}

func (p Person) ID() string    { return p.id }
func (p Person) Name() string  { return p.name }
func (p Person) Email() string { return p.email }
func (p Person) Phone() string { return p.phone }

// Contact returns the email, followed by the phone number when one is known.
func (p Person) Contact() string {
	if p.phone == "" {
		return p.email
	}
	return p.email + ", " + p.phone
}
