// Package verify builds verification prompts, invokes the language model,
// and parses its free-text answer into a structured analysis.
package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"verilens/internal/model"
)

// section identifies one of the known response sections
type section int

const (
	sectionNone section = iota
	sectionStatus
	sectionConfidence
	sectionSupporting
	sectionContradicting
	sectionReasoning
	sectionGaps
	sectionRecommendations
	sectionSourceEval
)

// sectionNames maps each section to the heading text the prompt asks for.
// Matching is case-insensitive and tolerates a leading ordinal.
var sectionNames = map[section][]string{
	sectionStatus:          {"verification status"},
	sectionConfidence:      {"confidence score", "confidence"},
	sectionSupporting:      {"supporting evidence"},
	sectionContradicting:   {"contradicting evidence"},
	sectionReasoning:       {"reasoning"},
	sectionGaps:            {"evidence gaps"},
	sectionRecommendations: {"recommendations"},
	sectionSourceEval:      {"source evaluation", "source evaluations"},
}

// sectionOrder is the scan order for heading detection. Longer names come
// before their prefixes so "confidence score" wins over bare "confidence".
var sectionOrder = []section{
	sectionStatus,
	sectionConfidence,
	sectionSupporting,
	sectionContradicting,
	sectionReasoning,
	sectionGaps,
	sectionRecommendations,
	sectionSourceEval,
}

// ordinalPattern strips a leading "1." / "2)" style marker from a heading
var ordinalPattern = regexp.MustCompile(`^\d+\s*[.)]\s*`)

// decimalPattern matches a number with a fractional part; bare integers are
// excluded so section ordinals never read as confidence values
var decimalPattern = regexp.MustCompile(`\d*\.\d+`)

// numberPattern matches any integer or decimal
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// listMarkerPattern matches a bullet, dash, or numeric list marker at the
// start of a line
var listMarkerPattern = regexp.MustCompile(`^\s*(?:[-*\x{2022}]|\d+\s*[.)])\s+`)

// statusSynonyms maps status keywords found in the model's status line onto
// the closed status set. Checked in order; first substring match wins.
var statusSynonyms = []struct {
	keyword string
	status  model.Status
}{
	{"partially true", model.StatusPartiallyTrue},
	{"partly", model.StatusPartiallyTrue},
	{"partially", model.StatusPartiallyTrue},
	{"misleading", model.StatusMisleading},
	{"unsupported", model.StatusUnsubstantiated},
	{"unsubstantiated", model.StatusUnsubstantiated},
	{"insufficient", model.StatusUnableToVerify},
	{"unclear", model.StatusUnableToVerify},
	{"unable", model.StatusUnableToVerify},
	{"cannot verify", model.StatusUnableToVerify},
	{"cannot be verified", model.StatusUnableToVerify},
	{"inconclusive", model.StatusUnableToVerify},
	{"incorrect", model.StatusFalse},
	{"untrue", model.StatusFalse},
	{"false", model.StatusFalse},
	{"debunked", model.StatusFalse},
	{"confirm", model.StatusVerified},
	{"verified", model.StatusVerified},
	{"accurate", model.StatusVerified},
	{"correct", model.StatusVerified},
	{"true", model.StatusVerified},
}

// statusDefaults is the last-resort confidence table used when no explicit
// score, implied numeric status, or source votes are available
var statusDefaults = map[model.Status]float64{
	model.StatusVerified:        0.85,
	model.StatusFalse:           0.85,
	model.StatusPartiallyTrue:   0.65,
	model.StatusMisleading:      0.65,
	model.StatusUnsubstantiated: 0.55,
	model.StatusUnableToVerify:  0.5,
	model.StatusError:           0.0,
}

// Parse converts the model's free-text answer into a structured analysis.
// Pure and deterministic; never fails. Malformed input degrades field by
// field rather than aborting.
func Parse(rawText, questionText string) *model.VerificationAnalysis {
	analysis := model.NewAnalysis(model.StatusUnableToVerify, 0.0)

	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		analysis.Status = model.StatusError
		analysis.Reasoning = "Model returned an empty response."
		return analysis
	}

	sections := segment(trimmed)

	if len(sections) == 0 {
		// No recognizable headings: attribute everything to reasoning
		analysis.Reasoning = trimmed
		analysis.Confidence = extractConfidence(trimmed, analysis)
		return analysis
	}

	if body, ok := sections[sectionSourceEval]; ok {
		analysis.SourceEvaluations = parseSourceEvaluations(body)
	}

	statusText := strings.TrimSpace(sections[sectionStatus])
	status, impliedConfidence := normalizeStatus(statusText)
	analysis.Status = status

	analysis.SupportingEvidence = splitListItems(sections[sectionSupporting])
	analysis.ContradictingEvidence = splitListItems(sections[sectionContradicting])
	analysis.EvidenceGaps = splitListItems(sections[sectionGaps])
	analysis.Recommendations = splitListItems(sections[sectionRecommendations])
	analysis.Reasoning = strings.TrimSpace(sections[sectionReasoning])

	if c, ok := explicitConfidence(sections[sectionConfidence]); ok {
		analysis.Confidence = model.ClampConfidence(c)
	} else if impliedConfidence >= 0 {
		analysis.Confidence = model.ClampConfidence(impliedConfidence)
	} else {
		analysis.Confidence = extractConfidence(trimmed, analysis)
	}

	if analysis.Reasoning == "" {
		analysis.Reasoning = fmt.Sprintf("Based on the evidence, the claim is determined to be %s.", analysis.Status)
	}

	return analysis
}

// segment scans lines and buckets bodies under recognized headings. Text
// before the first heading is discarded. A repeated heading restarts that
// section's buffer, so the last occurrence wins.
func segment(text string) map[section]string {
	sections := make(map[section]string)
	current := sectionNone
	var buffer []string

	flush := func() {
		if current == sectionNone {
			return
		}
		sections[current] = strings.TrimSpace(strings.Join(buffer, "\n"))
	}

	for _, line := range strings.Split(text, "\n") {
		if sec, rest, ok := matchHeading(line); ok {
			flush()
			current = sec
			buffer = buffer[:0]
			if rest != "" {
				buffer = append(buffer, rest)
			}
			continue
		}
		if current != sectionNone {
			buffer = append(buffer, line)
		}
	}
	flush()

	return sections
}

// matchHeading reports whether the line opens a known section and returns
// any content following the heading's colon on the same line
func matchHeading(line string) (section, string, bool) {
	stripped := strings.TrimSpace(line)
	stripped = strings.Trim(stripped, "*")
	stripped = ordinalPattern.ReplaceAllString(stripped, "")
	lower := strings.ToLower(stripped)

	for _, sec := range sectionOrder {
		for _, name := range sectionNames[sec] {
			if !strings.HasPrefix(lower, name) {
				continue
			}
			rest := stripped[len(name):]
			rest = strings.TrimLeft(rest, "*")
			if rest == "" {
				return sec, "", true
			}
			if strings.HasPrefix(rest, ":") {
				return sec, strings.TrimSpace(strings.Trim(rest[1:], "*")), true
			}
		}
	}
	return sectionNone, "", false
}

// splitListItems splits a section body into logical items. A line starting
// with a bullet, dash, or numeric marker opens a new item; other lines are
// space-joined onto the open item so multi-line points stay intact.
func splitListItems(body string) []string {
	items := []string{}
	body = strings.TrimSpace(body)
	if body == "" {
		return items
	}

	current := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if marker := listMarkerPattern.FindString(line); marker != "" {
			if current != "" {
				items = append(items, current)
			}
			current = strings.TrimSpace(line[len(marker):])
			continue
		}
		if current == "" {
			current = trimmed
		} else {
			current += " " + trimmed
		}
	}
	if current != "" {
		items = append(items, current)
	}
	return items
}

// normalizeStatus maps raw status text onto the closed status set. A bare
// numeric status is treated as an implied confidence and thresholded into a
// status; the implied value is returned so the caller can seed confidence
// with it. impliedConfidence is -1 when the status was worded.
func normalizeStatus(statusText string) (status model.Status, impliedConfidence float64) {
	lower := strings.ToLower(strings.TrimSpace(statusText))
	if lower == "" {
		return model.StatusUnableToVerify, -1
	}

	for _, entry := range statusSynonyms {
		if strings.Contains(lower, entry.keyword) {
			return entry.status, -1
		}
	}

	// A bare number conflates status and score
	if m := numberPattern.FindString(lower); m != "" && strings.TrimSpace(strings.Trim(lower, "0123456789.%")) == "" {
		value, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
		if err == nil {
			if strings.Contains(lower, "%") {
				value /= 100
			}
			value = model.ClampConfidence(value)
			return thresholdStatus(value), value
		}
	}

	return model.StatusUnableToVerify, -1
}

// thresholdStatus derives a status from a confidence-like score
func thresholdStatus(value float64) model.Status {
	switch {
	case value >= 0.8:
		return model.StatusVerified
	case value >= 0.6:
		return model.StatusPartiallyTrue
	case value >= 0.4:
		return model.StatusUnableToVerify
	case value >= 0.2:
		return model.StatusMisleading
	default:
		return model.StatusFalse
	}
}

// explicitConfidence extracts the first number from the confidence section
func explicitConfidence(body string) (float64, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return 0, false
	}
	m := numberPattern.FindString(body)
	if m == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	// "85%" means 0.85; anything else out of range is clamped by the caller
	if strings.Contains(body, "%") {
		value /= 100
	}
	return value, true
}

// extractConfidence is the fallback chain used when no explicit score was
// given: a decimal elsewhere in the text, then source-vote agreement, then
// the per-status default table.
func extractConfidence(fullText string, analysis *model.VerificationAnalysis) float64 {
	if m := decimalPattern.FindString(fullText); m != "" {
		if value, err := strconv.ParseFloat(m, 64); err == nil {
			return model.ClampConfidence(value)
		}
	}

	if c, ok := voteConfidence(analysis.Status, analysis.SourceEvaluations); ok {
		return c
	}

	return statusDefaults[analysis.Status]
}

// voteConfidence derives confidence from per-source YES/NO votes: the share
// of sources agreeing with the status's polarity
func voteConfidence(status model.Status, evals []model.SourceEvaluation) (float64, bool) {
	if len(evals) == 0 {
		return 0, false
	}

	agreeing := model.VerdictYes
	if status == model.StatusFalse || status == model.StatusMisleading {
		agreeing = model.VerdictNo
	}

	agree := 0
	for _, eval := range evals {
		if eval.Verdict == agreeing {
			agree++
		}
	}
	return model.ClampConfidence(float64(agree) / float64(len(evals))), true
}

// parseSourceEvaluations parses the optional per-source verdict section.
// Each item looks like "example.com: YES - corroborates the date". Items
// without a recognizable YES/NO are skipped.
func parseSourceEvaluations(body string) []model.SourceEvaluation {
	var evals []model.SourceEvaluation
	for _, item := range splitListItems(body) {
		source, verdict, reason, ok := splitEvaluation(item)
		if !ok {
			continue
		}
		evals = append(evals, model.SourceEvaluation{
			Source:  source,
			Verdict: verdict,
			Reason:  reason,
		})
	}
	return evals
}

var verdictPattern = regexp.MustCompile(`(?i)\b(yes|no)\b`)

func splitEvaluation(item string) (source string, verdict model.SourceVerdict, reason string, ok bool) {
	loc := verdictPattern.FindStringIndex(item)
	if loc == nil {
		return "", "", "", false
	}

	word := strings.ToLower(item[loc[0]:loc[1]])
	verdict = model.VerdictYes
	if word == "no" {
		verdict = model.VerdictNo
	}

	source = strings.TrimSpace(strings.Trim(item[:loc[0]], " :-"))
	reason = strings.TrimSpace(strings.Trim(item[loc[1]:], " :-"))
	if source == "" {
		return "", "", "", false
	}
	return source, verdict, reason, true
}
