package model

// Verdict is the aggregated authenticity judgment over all fact checks
// for one content submission
type Verdict string

const (
	VerdictReal       Verdict = "REAL"
	VerdictFake       Verdict = "FAKE"
	VerdictMisleading Verdict = "MISLEADING"
	VerdictUncertain  Verdict = "UNCERTAIN"
	VerdictError      Verdict = "ERROR"
)

// Judgment is the final aggregated verdict. Derived deterministically from
// the list of analyses; stateless, recomputed each call.
type Judgment struct {
	Verdict    Verdict `json:"judgment"`
	Confidence float64 `json:"confidence_score"`
	Reason     string  `json:"reason"`
}

// NewJudgment creates a judgment with the confidence clamped to [0,1]
func NewJudgment(verdict Verdict, confidence float64, reason string) Judgment {
	return Judgment{
		Verdict:    verdict,
		Confidence: ClampConfidence(confidence),
		Reason:     reason,
	}
}
