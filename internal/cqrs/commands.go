package cqrs

import "github.com/bijuli74/devops-capstone-project/internal/models"

type CreateAccountCommand struct {
	Name        string
	Email       string
	Address     string
	PhoneNumber string
	// DateJoined defaults to the current day when nil.
	DateJoined *models.Date
}

// UpdateAccountCommand replaces every mutable field of the account with the
// given ID. A nil DateJoined keeps the stored value.
type UpdateAccountCommand struct {
	ID          int64
	Name        string
	Email       string
	Address     string
	PhoneNumber string
	DateJoined  *models.Date
}

type DeleteAccountCommand struct {
	ID int64
}
