package model

// FactCheck pairs a question with its parsed analysis
type FactCheck struct {
	Question Question              `json:"question"`
	Analysis *VerificationAnalysis `json:"analysis"`
}

// ConfidenceScores reports per-stage confidence in the result metadata
type ConfidenceScores struct {
	QuestionGenerator float64 `json:"question_generator"`
	FactChecking      float64 `json:"fact_checking"`
	Judge             float64 `json:"judge"`
}

// ResultMetadata carries auxiliary data attached to a check result
type ResultMetadata struct {
	ConfidenceScores ConfidenceScores `json:"confidence_scores"`
}

// CheckResult is the complete output for one content submission. The field
// names and nested shapes are the contract external callers depend on.
// A result is always well-formed: even total failure produces a verdict
// with a degraded confidence and an explanatory reason, never nothing.
type CheckResult struct {
	InitialQuestions []string       `json:"initial_questions"`
	FactChecks       []FactCheck    `json:"fact_checks"`
	Judgment         Verdict        `json:"judgment"`
	JudgmentReason   string         `json:"judgment_reason"`
	Metadata         ResultMetadata `json:"metadata"`
}

// InsufficientContextResult is returned when the question generator signals
// that the content has no checkable claims. Verification and judgment are
// bypassed entirely.
func InsufficientContextResult() *CheckResult {
	return &CheckResult{
		InitialQuestions: []string{},
		FactChecks:       []FactCheck{},
		Judgment:         VerdictUncertain,
		JudgmentReason:   "The content doesn't contain factual claims that can be verified.",
		Metadata: ResultMetadata{
			ConfidenceScores: ConfidenceScores{
				QuestionGenerator: 0.5,
				FactChecking:      0.0,
				Judge:             0.5,
			},
		},
	}
}

// ErrorResult is returned when question generation itself failed
func ErrorResult(reason string) *CheckResult {
	return &CheckResult{
		InitialQuestions: []string{},
		FactChecks:       []FactCheck{},
		Judgment:         VerdictError,
		JudgmentReason:   reason,
		Metadata:         ResultMetadata{},
	}
}
