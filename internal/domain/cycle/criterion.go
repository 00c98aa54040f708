package cycle

import "time"

// CriteriaType classifies a criterion row.
type CriteriaType string

const (
	// CriteriaGeneral is a student-facing eligibility requirement.
	CriteriaGeneral CriteriaType = "GENERAL"
	// CriteriaScholarshipType is the legacy row that used to carry the cycle's
	// displayed scholarship type. New writes go to Cycle.ScholarshipType; rows
	// of this type are only read as a fallback and purged on the next type write.
	CriteriaScholarshipType CriteriaType = "SCHOLARSHIP_TYPE"
)

// Criterion is a single requirement attached to a cycle.
// Corresponds to the 'cycle_criteria' table.
type Criterion struct {
	ID          int64
	CycleID     int64
	Type        CriteriaType
	Value       string
	IsMandatory bool
	CreatedAt   time.Time
}
