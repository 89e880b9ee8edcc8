package models

import "time"

// Task is a todo item owned by exactly one user. UserID is fixed at creation
// and never reassigned. CompletedAt is set when Completed flips to true and
// cleared when it flips back.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}
