// Package judge aggregates per-question verification analyses into one
// overall authenticity judgment.
package judge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"verilens/internal/model"
)

// dominantFalseThreshold is the confidence a single false-like analysis
// needs to force a FAKE verdict on its own. Tunable policy, not a law.
const dominantFalseThreshold = 0.7

// maxReasonExcerpt bounds the per-question reasoning excerpt included in
// the judgment reason string
const maxReasonExcerpt = 100

// bucket is the coarse grouping used during aggregation
type bucket int

const (
	bucketVerified bucket = iota
	bucketFalse
	bucketUncertain
)

// classify maps a status onto its aggregation bucket. Misleading and
// partially-true count as false-like: partial truth is how misinformation
// usually presents.
func classify(status model.Status) bucket {
	switch status {
	case model.StatusVerified:
		return bucketVerified
	case model.StatusFalse, model.StatusMisleading, model.StatusPartiallyTrue:
		return bucketFalse
	default:
		return bucketUncertain
	}
}

// Judge reduces the per-question analyses to a single verdict with a
// confidence score and a reproducible reason string. Stateless and
// deterministic; the same input list always yields the same judgment.
//
// Decision order encodes the risk posture: a confident false signal
// dominates everything, any false signal beats a majority of verified ones,
// and REAL requires both a verified majority and high average confidence.
func Judge(analyses []*model.VerificationAnalysis) model.Judgment {
	if len(analyses) == 0 {
		return model.NewJudgment(model.VerdictUncertain, 0.0, "No verification analyses were produced.")
	}

	var verified, falsy, uncertain int
	var confidenceSum float64
	var dominantFalse float64
	var bestVerified float64

	for _, analysis := range analyses {
		conf := analysis.Confidence
		if analysis.Status == model.StatusError {
			// Failed checks degrade the average instead of aborting
			conf = 0.0
		}
		confidenceSum += conf

		switch classify(analysis.Status) {
		case bucketVerified:
			verified++
			if conf > bestVerified {
				bestVerified = conf
			}
		case bucketFalse:
			falsy++
			if conf >= dominantFalseThreshold && conf > dominantFalse {
				dominantFalse = conf
			}
		default:
			uncertain++
		}
	}

	n := len(analyses)
	avgConfidence := confidenceSum / float64(n)
	reason := buildReason(analyses, verified, falsy, uncertain, avgConfidence)

	switch {
	case dominantFalse > 0:
		confidence := dominantFalse
		if confidence < 0.5 {
			confidence = 0.5
		}
		return model.NewJudgment(model.VerdictFake, confidence, reason)

	case falsy > 0:
		return model.NewJudgment(model.VerdictMisleading, model.Clamp(avgConfidence, 0.5, 0.8), reason)

	case float64(verified)/float64(n) >= 0.6 && avgConfidence >= 0.7:
		confidence := avgConfidence
		if bestVerified > confidence {
			confidence = bestVerified
		}
		return model.NewJudgment(model.VerdictReal, model.Clamp(confidence, 0.5, 1.0), reason)

	default:
		return model.NewJudgment(model.VerdictUncertain, model.Clamp(avgConfidence, 0.5, 0.7), reason)
	}
}

// buildReason produces the deterministic judgment explanation: bucket
// counts, average confidence, and a brief excerpt per question
func buildReason(analyses []*model.VerificationAnalysis, verified, falsy, uncertain int, avgConfidence float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Checked %d question(s): %d verified, %d false or misleading, %d uncertain. Average confidence %.2f.",
		len(analyses), verified, falsy, uncertain, avgConfidence)

	for i, analysis := range analyses {
		excerpt := truncateExcerpt(strings.TrimSpace(analysis.Reasoning), maxReasonExcerpt)
		fmt.Fprintf(&b, " [%d] %s: %s", i+1, analysis.Status, excerpt)
	}

	return b.String()
}

// truncateExcerpt shortens s to at most limit characters. Cutting on rune
// boundaries keeps multi-byte text valid UTF-8.
func truncateExcerpt(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
