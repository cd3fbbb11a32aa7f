package model

import (
	"time"
)

type ContactStatus string

const (
	ContactStatusPending ContactStatus = "pending"
)

// ContactSubmission is one row of the contacts collection.
type ContactSubmission struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Subject        string        `json:"subject"`
	Priority       string        `json:"priority"`
	Message        string        `json:"message"`
	SubmissionDate time.Time     `json:"submissionDate"`
	Status         ContactStatus `json:"status"`
}

type CreateContactParams struct {
	UserID   string
	Name     string
	Email    string
	Subject  string
	Priority string
	Message  string
}
