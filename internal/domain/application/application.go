// internal/domain/application/application.go
package application

import (
	"database/sql"
	"time"
)

// Application is one applicant's submission against a cycle.
// Corresponds to the 'applications' table.
type Application struct {
	ID                int64
	ApplicationNumber string
	UserID            string // applicant, as supplied by the identity provider
	CycleID           int64  // Foreign Key to cycles.id
	MotivationLetter  string
	AdditionalInfo    AdditionalInfo
	Status            Status
	DecisionNotes     sql.NullString
	DecisionBy        sql.NullString
	SubmittedAt       sql.NullTime
	ReviewedAt        sql.NullTime
	DecisionAt        sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Document links an uploaded document to an application.
// Corresponds to the 'application_documents' table.
type Document struct {
	ID            int64
	ApplicationID int64
	DocumentID    string
	CreatedAt     time.Time
}

// Review records one reviewer decision on an application.
// Corresponds to the 'application_reviews' table.
type Review struct {
	ID            int64
	ApplicationID int64
	ReviewerID    string
	Decision      Status
	Comments      sql.NullString
	CreatedAt     time.Time
}

// History tracks every status change of an application.
// Corresponds to the 'application_history' table.
type History struct {
	ID            int64
	ApplicationID int64
	FromStatus    sql.NullString // NULL for the creation entry
	ToStatus      Status
	ChangedBy     string
	Note          sql.NullString
	CreatedAt     time.Time
}

// Filter narrows List. Zero values are ignored.
type Filter struct {
	Status          Status
	CycleID         int64
	UserID          string
	SubmittedBefore time.Time
	Limit           int
	Offset          int
}
