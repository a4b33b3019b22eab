// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a locally registered user. Federated accounts keep a
// throwaway password hash that no caller knows.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsFederated  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
