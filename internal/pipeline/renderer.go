package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"verilens/internal/model"
)

// Renderer formats check results for output
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer. pretty controls JSON indentation.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// JSON renders the result record consumers depend on
func (r *Renderer) JSON(result *model.CheckResult) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

// Text renders a human-readable summary of the result
func (r *Renderer) Text(result *model.CheckResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Judgment: %s (confidence %.2f)\n", result.Judgment, result.Metadata.ConfidenceScores.Judge)
	fmt.Fprintf(&b, "Reason: %s\n", result.JudgmentReason)

	if len(result.FactChecks) > 0 {
		b.WriteString("\nFact checks:\n")
		for i, check := range result.FactChecks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, check.Question.Text)
			fmt.Fprintf(&b, "   Status: %s (confidence %.2f)\n", check.Analysis.Status, check.Analysis.Confidence)
			if check.Analysis.Reasoning != "" {
				fmt.Fprintf(&b, "   %s\n", check.Analysis.Reasoning)
			}
			if len(check.Analysis.Sources) > 0 {
				fmt.Fprintf(&b, "   Sources: %s\n", strings.Join(check.Analysis.Sources, ", "))
			}
		}
	}

	return b.String()
}
