// Package models holds the persistent data structures shared by the server
// repositories and services.
package models

import "time"

// User is a principal record. Email is stored normalized (trimmed,
// lower-cased); uniqueness is enforced by the storage layer.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}
