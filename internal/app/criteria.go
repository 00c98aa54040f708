package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scholarship_admin/internal/domain/cycle"
)

// normalizeValues trims values and drops blanks and repeats, keeping order.
func normalizeValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// replaceEligibilityCriteria swaps the cycle's GENERAL criteria for values.
// Applying the same list twice leaves the same rows.
func replaceEligibilityCriteria(ctx context.Context, repo cycle.Repository, cycleID int64, values []string) ([]*cycle.Criterion, error) {
	criteria, err := repo.ReplaceGeneralCriteria(ctx, cycleID, normalizeValues(values))
	if err != nil {
		return nil, fmt.Errorf("failed to replace eligibility criteria for cycle %d: %w", cycleID, err)
	}
	return criteria, nil
}

// eligibilityCriteria lists the GENERAL criteria only; the scholarship type is
// metadata, not a requirement shown to students.
func eligibilityCriteria(ctx context.Context, repo cycle.Repository, cycleID int64) ([]*cycle.Criterion, error) {
	all, err := repo.ListCriteria(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria for cycle %d: %w", cycleID, err)
	}
	general := make([]*cycle.Criterion, 0, len(all))
	for _, cr := range all {
		if cr.Type == cycle.CriteriaGeneral {
			general = append(general, cr)
		}
	}
	return general, nil
}

// applyScholarshipType stores the type on the cycle itself and drops any
// legacy SCHOLARSHIP_TYPE rows, so exactly one value remains: the latest.
// The caller persists c.
func applyScholarshipType(ctx context.Context, repo cycle.Repository, c *cycle.Cycle, value string) error {
	value = strings.TrimSpace(value)
	c.ScholarshipType = sql.NullString{String: value, Valid: value != ""}
	if _, err := repo.DeleteCriteriaByType(ctx, c.ID, cycle.CriteriaScholarshipType); err != nil {
		return fmt.Errorf("failed to purge legacy type criteria for cycle %d: %w", c.ID, err)
	}
	return nil
}

func criteriaValues(criteria []*cycle.Criterion) []string {
	out := make([]string, 0, len(criteria))
	for _, cr := range criteria {
		out = append(out, cr.Value)
	}
	return out
}
