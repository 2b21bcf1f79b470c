package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// NoPlanMessage explains a plan.ErrNoPlanAvailable result to the user.
const NoPlanMessage = `No query plan available.

The input did not contain a query_block. Provide the output of
EXPLAIN FORMAT=JSON <your query>, not a result set or tabular EXPLAIN.`

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, result analyzer.Result) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sPlan Summary%s\n\n", colorBold, colorCyan, colorReset)
	if cost, ok := result.Root.CostEstimate(); ok {
		tw.printf("  Query Cost: %.2f\n", cost)
	} else {
		tw.printf("  Query Cost: unknown\n")
	}
	tw.printf("  Tables:     %s\n", listOrNone(result.Tables))
	switch {
	case len(result.Tables) == 0:
	case !result.PartialMetadata:
		tw.printf("  Metadata:   complete\n")
	case len(result.MissingTables) == len(result.Tables):
		tw.printf("  Metadata:   %sunavailable%s\n", colorYellow, colorReset)
	default:
		tw.printf("  Metadata:   %spartial, missing %s%s\n", colorYellow, strings.Join(result.MissingTables, ", "), colorReset)
	}
	tw.printf("  %sRun:        %s%s\n\n", colorDim, result.RunID, colorReset)

	tw.printf("%s%sPlan%s\n\n", colorBold, colorCyan, colorReset)
	tw.renderNode(result.Root, 1)
	tw.printf("\n")

	counts := result.Counts()
	if counts[plan.SeverityCritical] == 0 && counts[plan.SeverityWarning] == 0 {
		tw.printf("%s%sNo issues found.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("%s%sFindings%s  %s%d critical%s, %s%d warning%s\n",
		colorBold, colorCyan, colorReset,
		colorRed, counts[plan.SeverityCritical], colorReset,
		colorYellow, counts[plan.SeverityWarning], colorReset)

	return tw.err
}

func (tw *textWriter) renderNode(n *plan.Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	label, color := severityFormat(n.Severity)
	if label != "" {
		tw.printf("%s%s%-8s%s %s\n", indent, color, label, colorReset, describeNode(n))
	} else {
		tw.printf("%s%s\n", indent, describeNode(n))
	}

	for _, issue := range n.Issues {
		tw.printf("%s  %s→ %s%s\n", indent, colorDim, issue, colorReset)
	}

	for _, child := range n.Children {
		tw.renderNode(child, depth+1)
	}
}

func describeNode(n *plan.Node) string {
	var b strings.Builder

	switch n.Kind {
	case plan.KindQuery:
		b.WriteString("query")
		if n.SelectID > 0 {
			fmt.Fprintf(&b, " #%d", n.SelectID)
		}
		if n.Message != "" {
			fmt.Fprintf(&b, " (%s)", n.Message)
		}
	case plan.KindGroupBy, plan.KindOrderBy:
		if n.Kind == plan.KindGroupBy {
			b.WriteString("group by")
		} else {
			b.WriteString("order by")
		}
		var flags []string
		if n.UsingTemporary {
			flags = append(flags, "temporary")
		}
		if n.UsingFilesort {
			flags = append(flags, "filesort")
		}
		if len(flags) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(flags, ", "))
		}
	case plan.KindTableAccess:
		b.WriteString(n.Table)
		access := n.AccessType
		if n.Key != "" {
			access += " " + n.Key
		}
		if access != "" {
			fmt.Fprintf(&b, " [%s]", strings.TrimSpace(access))
		}
		if rows, ok := n.RowsEstimate(); ok {
			fmt.Fprintf(&b, " rows=%.0f", rows)
		}
		if f, ok := n.FilteredPercent(); ok {
			fmt.Fprintf(&b, " filtered=%.2f%%", f)
		}
	}

	if cost, ok := n.CostEstimate(); ok {
		fmt.Fprintf(&b, " cost=%.2f", cost)
	}

	return b.String()
}

func severityFormat(s plan.Severity) (string, string) {
	switch s {
	case plan.SeverityCritical:
		return "CRITICAL", colorRed
	case plan.SeverityWarning:
		return "WARNING", colorYellow
	case plan.SeverityGood:
		return "GOOD", colorGreen
	default:
		return "", ""
	}
}

// RenderTablesText prints one table name per line.
func RenderTablesText(w io.Writer, tables []string) error {
	tw := &textWriter{w: w}
	if len(tables) == 0 {
		tw.printf("%sNo tables referenced.%s\n", colorDim, colorReset)
		return tw.err
	}
	for _, t := range tables {
		tw.printf("%s\n", t)
	}
	return tw.err
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
