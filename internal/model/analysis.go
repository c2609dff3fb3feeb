package model

// Status is the normalized verification status of one question.
// Parsed model output is always mapped onto this closed set -- free text
// that matches nothing becomes StatusUnableToVerify, hard failures become
// StatusError.
type Status string

const (
	StatusVerified        Status = "verified"
	StatusFalse           Status = "false"
	StatusPartiallyTrue   Status = "partially_true"
	StatusMisleading      Status = "misleading"
	StatusUnsubstantiated Status = "unsubstantiated"
	StatusUnableToVerify  Status = "unable_to_verify"
	StatusError           Status = "error"
)

// IsPositive reports whether the status affirms the claim
func (s Status) IsPositive() bool {
	return s == StatusVerified || s == StatusPartiallyTrue
}

// SourceVerdict is a per-source YES/NO vote from the optional source
// evaluation section of the model response
type SourceVerdict string

const (
	VerdictYes SourceVerdict = "yes"
	VerdictNo  SourceVerdict = "no"
)

// SourceEvaluation records one source's vote on the question
type SourceEvaluation struct {
	Source  string        `json:"source"`
	Verdict SourceVerdict `json:"verdict"`
	Reason  string        `json:"reason,omitempty"`
}

// VerificationAnalysis is the structured fact-check outcome for one
// question, parsed from the model's free-text response.
//
// Invariants: Confidence is always within [0,1] and Status is always one of
// the Status constants. Use NewAnalysis / NewErrorAnalysis so the invariants
// hold at creation time.
type VerificationAnalysis struct {
	Status                Status             `json:"verification_status"`
	Confidence            float64            `json:"confidence_score"`
	SupportingEvidence    []string           `json:"supporting_evidence"`
	ContradictingEvidence []string           `json:"contradicting_evidence"`
	Reasoning             string             `json:"reasoning"`
	EvidenceGaps          []string           `json:"evidence_gaps"`
	Recommendations       []string           `json:"recommendations"`
	Sources               []string           `json:"sources"`
	SourceEvaluations     []SourceEvaluation `json:"source_evaluations,omitempty"`
}

// NewAnalysis creates an analysis with the confidence clamped to [0,1]
func NewAnalysis(status Status, confidence float64) *VerificationAnalysis {
	return &VerificationAnalysis{
		Status:                status,
		Confidence:            ClampConfidence(confidence),
		SupportingEvidence:    []string{},
		ContradictingEvidence: []string{},
		EvidenceGaps:          []string{},
		Recommendations:       []string{},
		Sources:               []string{},
	}
}

// NewErrorAnalysis creates the degraded analysis used when a collaborator
// call failed for one question. The failure stays local to that question.
func NewErrorAnalysis(reason string) *VerificationAnalysis {
	a := NewAnalysis(StatusError, 0.0)
	a.Reasoning = reason
	return a
}

// ClampConfidence clamps a confidence value to [0,1]
func ClampConfidence(c float64) float64 {
	if c < 0.0 {
		return 0.0
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}

// Clamp bounds a confidence value to [lo,hi]
func Clamp(c, lo, hi float64) float64 {
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}
