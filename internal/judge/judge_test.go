package judge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"verilens/internal/model"
)

func analysisWith(status model.Status, confidence float64) *model.VerificationAnalysis {
	a := model.NewAnalysis(status, confidence)
	a.Reasoning = "reasoning for " + string(status)
	return a
}

func TestJudgeEmptyInput(t *testing.T) {
	judgment := Judge(nil)

	if judgment.Verdict != model.VerdictUncertain {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictUncertain)
	}
	if judgment.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", judgment.Confidence)
	}
	if judgment.Reason == "" {
		t.Error("Reason is empty")
	}
}

func TestJudgeDominantFalseWins(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusFalse, 0.9),
		analysisWith(model.StatusVerified, 0.9),
		analysisWith(model.StatusVerified, 0.9),
		analysisWith(model.StatusVerified, 0.9),
		analysisWith(model.StatusVerified, 0.9),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictFake {
		t.Errorf("Verdict = %q, want %q (confident false dominates)", judgment.Verdict, model.VerdictFake)
	}
	if judgment.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want >= 0.9", judgment.Confidence)
	}
}

func TestJudgeMajorityReal(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusVerified, 0.8),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictReal {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictReal)
	}
	if judgment.Confidence < 0.8 {
		t.Errorf("Confidence = %v, want >= 0.8", judgment.Confidence)
	}
}

func TestJudgeWeakFalseGivesMisleading(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusMisleading, 0.5),
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusVerified, 0.8),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictMisleading {
		t.Errorf("Verdict = %q, want %q (any false-like signal blocks REAL)", judgment.Verdict, model.VerdictMisleading)
	}
	if judgment.Confidence < 0.5 || judgment.Confidence > 0.8 {
		t.Errorf("Confidence = %v, want within [0.5,0.8]", judgment.Confidence)
	}
}

func TestJudgePartiallyTrueCountsAsFalseLike(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusPartiallyTrue, 0.9),
		analysisWith(model.StatusVerified, 0.9),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictFake {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictFake)
	}
}

func TestJudgeUncertainMajority(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusUnableToVerify, 0.5),
		analysisWith(model.StatusUnableToVerify, 0.5),
		analysisWith(model.StatusVerified, 0.9),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictUncertain {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictUncertain)
	}
	if judgment.Confidence < 0.5 || judgment.Confidence > 0.7 {
		t.Errorf("Confidence = %v, want within [0.5,0.7]", judgment.Confidence)
	}
}

func TestJudgeLowAverageBlocksReal(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusVerified, 0.6),
		analysisWith(model.StatusVerified, 0.6),
		analysisWith(model.StatusVerified, 0.6),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictUncertain {
		t.Errorf("Verdict = %q, want %q (average below REAL threshold)", judgment.Verdict, model.VerdictUncertain)
	}
}

func TestJudgeErrorAnalysesDegradeAverage(t *testing.T) {
	withError := []*model.VerificationAnalysis{
		analysisWith(model.StatusVerified, 0.9),
		analysisWith(model.StatusVerified, 0.9),
		model.NewErrorAnalysis("model unavailable"),
	}

	judgment := Judge(withError)

	// Two verified at 0.9 plus one error at 0 gives average 0.6, below the
	// 0.7 REAL threshold
	if judgment.Verdict != model.VerdictUncertain {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictUncertain)
	}
}

func TestJudgeErrorOnlyInput(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		model.NewErrorAnalysis("one"),
		model.NewErrorAnalysis("two"),
	}

	judgment := Judge(analyses)

	if judgment.Verdict != model.VerdictUncertain {
		t.Errorf("Verdict = %q, want %q", judgment.Verdict, model.VerdictUncertain)
	}
	// 0.5 floor applies even when everything failed
	if judgment.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", judgment.Confidence)
	}
}

func TestJudgeConfidenceFloor(t *testing.T) {
	inputs := [][]*model.VerificationAnalysis{
		{analysisWith(model.StatusFalse, 0.7)},
		{analysisWith(model.StatusMisleading, 0.2)},
		{analysisWith(model.StatusVerified, 0.9)},
		{analysisWith(model.StatusUnableToVerify, 0.1)},
	}

	for _, analyses := range inputs {
		judgment := Judge(analyses)
		if judgment.Confidence < 0.5 {
			t.Errorf("Judge(%s) Confidence = %v, want >= 0.5", analyses[0].Status, judgment.Confidence)
		}
		if judgment.Confidence > 1.0 {
			t.Errorf("Judge(%s) Confidence = %v, want <= 1.0", analyses[0].Status, judgment.Confidence)
		}
	}
}

func TestJudgeReasonDeterministic(t *testing.T) {
	analyses := []*model.VerificationAnalysis{
		analysisWith(model.StatusVerified, 0.8),
		analysisWith(model.StatusFalse, 0.9),
	}

	first := Judge(analyses)
	second := Judge(analyses)

	if first.Reason != second.Reason {
		t.Error("Reason differs across identical inputs")
	}
	if first.Verdict != second.Verdict || first.Confidence != second.Confidence {
		t.Error("judgment differs across identical inputs")
	}
}

func TestJudgeReasonContents(t *testing.T) {
	long := analysisWith(model.StatusVerified, 0.9)
	long.Reasoning = strings.Repeat("a", 300)

	judgment := Judge([]*model.VerificationAnalysis{
		long,
		analysisWith(model.StatusFalse, 0.8),
	})

	if !strings.Contains(judgment.Reason, "1 verified, 1 false or misleading, 0 uncertain") {
		t.Errorf("Reason missing bucket counts: %q", judgment.Reason)
	}
	if !strings.Contains(judgment.Reason, strings.Repeat("a", 100)+"...") {
		t.Error("Reason missing truncated excerpt")
	}
	if strings.Contains(judgment.Reason, strings.Repeat("a", 150)) {
		t.Error("Reason contains untruncated excerpt")
	}
}

func TestJudgeReasonExcerptCutsOnRuneBoundary(t *testing.T) {
	multiByte := analysisWith(model.StatusVerified, 0.9)
	multiByte.Reasoning = strings.Repeat("é", maxReasonExcerpt+50)

	judgment := Judge([]*model.VerificationAnalysis{multiByte})

	if !utf8.ValidString(judgment.Reason) {
		t.Fatalf("Reason is not valid UTF-8: %q", judgment.Reason)
	}
	if !strings.Contains(judgment.Reason, strings.Repeat("é", maxReasonExcerpt)+"...") {
		t.Error("Reason missing rune-bounded excerpt")
	}
	if strings.Contains(judgment.Reason, strings.Repeat("é", maxReasonExcerpt+1)) {
		t.Error("Reason contains untruncated excerpt")
	}
}
