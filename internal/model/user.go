package model

import (
	"time"
)

// User is one row of the users collection. JSON tags double as the
// on-disk field names, so they must stay stable.
type User struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	StudentID        string     `json:"studentId"`
	Phone            string     `json:"phone"`
	PasswordHash     string     `json:"password"`
	RegistrationDate time.Time  `json:"registrationDate"`
	LastLogin        *time.Time `json:"lastLogin"`
}

// DisplayName is the name shown after login and stored on the session.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Email        string
	StudentID    string
	Phone        string
	PasswordHash string
}
