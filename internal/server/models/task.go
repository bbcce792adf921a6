package models

import "time"

// Task is a unit of work owned by exactly one user. The owner is fixed at
// creation and never reassigned.
type Task struct {
	ID          int64
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
