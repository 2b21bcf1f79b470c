package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/mysqlplan/internal/comparator"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Cost:     %s\n", formatDelta(s.OldTotalCost, s.NewTotalCost, s.CostPct, s.CostDir, "%.2f"))
	tw.printf("  Worst:    %s → %s%s%s\n", severityText(s.OldWorst), dirColor(s.SeverityDir), severityText(s.NewWorst), colorReset)
	tw.printf("  Critical: %d → %d\n", s.OldCritical, s.NewCritical)
	tw.printf("  Warnings: %d → %d\n", s.OldWarnings, s.NewWarnings)
	if s.IssuesFixed > 0 || s.IssuesIntro > 0 {
		tw.printf("  Issues:   %s%d resolved%s, %s%d introduced%s\n",
			colorGreen, s.IssuesFixed, colorReset, colorRed, s.IssuesIntro, colorReset)
	}
	tw.printf("\n")

	changes := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.AccessChanges
	if changes == 0 {
		tw.printf("%s%sPlans are equivalent.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d access changed, %d added, %d removed\n\n",
		s.NodesModified, s.AccessChanges, s.NodesAdded, s.NodesRemoved)

	tw.printf("%s%sNode Details%s\n\n", colorBold, colorCyan, colorReset)

	for _, delta := range result.Deltas {
		tw.renderDelta(delta, 0)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderDelta(d comparator.NodeDelta, depth int) {
	indent := strings.Repeat("  ", depth+1)

	switch d.ChangeType {
	case comparator.NoChange:
		for _, child := range d.Children {
			tw.renderDelta(child, depth)
		}
		return
	case comparator.Added:
		tw.printf("%s%s+ %s%s%s\n", indent, colorGreen, deltaLabel(d), costSuffix(d.NewCost), colorReset)
	case comparator.Removed:
		tw.printf("%s%s- %s%s%s\n", indent, colorRed, deltaLabel(d), costSuffix(d.OldCost), colorReset)
	case comparator.AccessChanged:
		tw.printf("%s%s~ %s: %s → %s%s\n", indent, colorYellow, deltaLabel(d),
			accessText(d.OldAccessType, d.OldKey), accessText(d.NewAccessType, d.NewKey), colorReset)
		tw.renderDeltaDetails(indent, d)
	case comparator.Modified:
		tw.printf("%s%s~ %s%s\n", indent, colorYellow, deltaLabel(d), colorReset)
		tw.renderDeltaDetails(indent, d)
	}

	for _, child := range d.Children {
		tw.renderDelta(child, depth+1)
	}
}

func (tw *textWriter) renderDeltaDetails(indent string, d comparator.NodeDelta) {
	if d.OldCost != nil && d.NewCost != nil {
		tw.printf("%s  cost: %s\n", indent, formatDelta(*d.OldCost, *d.NewCost, d.CostPct, d.CostDir, "%.2f"))
	}
	if d.OldRows != nil && d.NewRows != nil && *d.OldRows != *d.NewRows {
		tw.printf("%s  rows: %s\n", indent, formatDelta(*d.OldRows, *d.NewRows, d.RowsPct, d.RowsDir, "%.0f"))
	}
	if d.SeverityDir != comparator.Unchanged {
		tw.printf("%s  severity: %s → %s%s %s%s\n", indent, severityText(d.OldSeverity),
			dirColor(d.SeverityDir), severityText(d.NewSeverity), dirArrow(d.SeverityDir), colorReset)
	}
	for _, issue := range d.IssuesRemoved {
		tw.printf("%s  %s- %s%s\n", indent, colorGreen, issue, colorReset)
	}
	for _, issue := range d.IssuesAdded {
		tw.printf("%s  %s+ %s%s\n", indent, colorRed, issue, colorReset)
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch {
	case s.CostDir != comparator.Regressed && s.SeverityDir == comparator.Improved,
		s.CostDir == comparator.Improved && s.SeverityDir == comparator.Unchanged:
		color = colorGreen
	case s.CostDir != comparator.Improved && s.SeverityDir == comparator.Regressed,
		s.CostDir == comparator.Regressed && s.SeverityDir == comparator.Unchanged:
		color = colorRed
	case s.CostDir != comparator.Unchanged || s.SeverityDir != comparator.Unchanged:
		color = colorYellow
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}

func formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s", oldStr, color, newStr, arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓"
	case comparator.Regressed:
		return "↑"
	default:
		return ""
	}
}

func deltaLabel(d comparator.NodeDelta) string {
	if d.Table != "" {
		return fmt.Sprintf("%s on %s", d.Kind, d.Table)
	}
	return fmt.Sprintf("%s %s", d.Kind, d.ID)
}

func accessText(access, key string) string {
	switch {
	case access == "":
		return "none"
	case key == "":
		return access
	default:
		return access + " using " + key
	}
}

func costSuffix(cost *float64) string {
	if cost == nil {
		return ""
	}
	return fmt.Sprintf(" (cost=%.2f)", *cost)
}

func severityText(s plan.Severity) string {
	if s == plan.SeverityNone {
		return "none"
	}
	return s.String()
}
