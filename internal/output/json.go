package output

import (
	"encoding/json"
	"io"

	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

type analysisDocument struct {
	analyzer.Result
	Findings []analyzer.Finding `json:"findings"`
	Critical int                `json:"critical"`
	Warnings int                `json:"warnings"`
}

func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderAnalysisJSON encodes the diagnosed tree together with its flattened
// findings.
func RenderAnalysisJSON(w io.Writer, result analyzer.Result) error {
	counts := result.Counts()
	findings := result.Findings()
	if findings == nil {
		findings = []analyzer.Finding{}
	}
	return RenderJSON(w, analysisDocument{
		Result:   result,
		Findings: findings,
		Critical: counts[plan.SeverityCritical],
		Warnings: counts[plan.SeverityWarning],
	})
}
