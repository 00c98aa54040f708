package telegram

import (
	"fmt"
	"strings"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
)

const dateLayout = "2006-01-02"

func formatCycleLine(v *app.CycleView) string {
	return fmt.Sprintf("#%d %s [%s] %d/%d slots left, closes %s",
		v.ID, v.DisplayName, v.Status, v.RemainingSlots, v.TotalSlots, v.ApplicationEndDate.Format(dateLayout))
}

func formatCycleDetails(v *app.CycleView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cycle #%d: %s\n", v.ID, v.DisplayName)
	fmt.Fprintf(&b, "Program: %s (%s)\n", v.Name, v.AcademicYear)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	fmt.Fprintf(&b, "Type: %s\n", v.ScholarshipType)
	fmt.Fprintf(&b, "Amount: %.2f for %d months\n", v.Amount, v.DurationMonths)
	fmt.Fprintf(&b, "Slots: %d remaining of %d (%d applications)\n", v.RemainingSlots, v.TotalSlots, v.ApplicationCount)
	fmt.Fprintf(&b, "Window: %s to %s\n", v.ApplicationStartDate.Format(dateLayout), v.ApplicationEndDate.Format(dateLayout))
	if len(v.EligibilityCriteria) > 0 {
		b.WriteString("Eligibility:\n")
		for _, c := range v.EligibilityCriteria {
			fmt.Fprintf(&b, " - %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatApplicationLine(a *application.Application) string {
	line := fmt.Sprintf("#%d %s %s by %s", a.ID, a.ApplicationNumber, a.Status, a.UserID)
	if a.SubmittedAt.Valid {
		line += ", submitted " + a.SubmittedAt.Time.Format(dateLayout)
	}
	return line
}
