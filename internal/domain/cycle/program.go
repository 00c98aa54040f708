// internal/domain/cycle/program.go
package cycle

import (
	"database/sql"
	"time"
)

// SponsorType distinguishes individual donors from organisations.
type SponsorType string

const (
	SponsorIndividual   SponsorType = "INDIVIDUAL"
	SponsorOrganization SponsorType = "ORGANIZATION"
)

// Sponsor is the funding entity behind one or more programs.
// Corresponds to the 'sponsors' table.
type Sponsor struct {
	ID        int64
	Name      string
	Type      SponsorType
	CreatedAt time.Time
}

// Program is the reusable scholarship template that cycles instantiate.
// Corresponds to the 'programs' table.
type Program struct {
	ID            int64
	SponsorID     int64 // Foreign Key to sponsors.id
	Name          string
	Description   sql.NullString
	DefaultAmount float64
	DefaultSlots  int
	StartYear     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
