// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. Email is globally unique and stored in
// case-normalized form. PasswordHash is an opaque encoded hash that must
// never be exposed outside the auth package boundary.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
