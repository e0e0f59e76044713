package decision

import (
	"reflect"
	"testing"

	"github.com/soukly/nucleus/internal/intent"
	"github.com/soukly/nucleus/internal/risk"
	"github.com/soukly/nucleus/internal/trust"
)

func request(riskLevel risk.Level, buyer, seller trust.Level) Request {
	return Request{
		RequestID:      "req-1",
		Intent:         intent.TypeBuy,
		BuyerTrust:     trust.Score{UserID: "buyer", Score: scoreFor(buyer), Level: buyer},
		SellerTrust:    trust.Score{UserID: "seller", Score: scoreFor(seller), Level: seller},
		RiskAssessment: risk.Assessment{TransactionID: "tx-1", OverallRisk: riskLevel},
		TransactionContext: TransactionContext{
			Amount:       250,
			Currency:     "USD",
			ItemCategory: "books",
		},
	}
}

func scoreFor(l trust.Level) int {
	switch l {
	case trust.LevelVerified:
		return 90
	case trust.LevelTrusted:
		return 70
	case trust.LevelStandard:
		return 50
	case trust.LevelNew:
		return 30
	default:
		return 10
	}
}

func TestRecommendDeclinesCriticalRestricted(t *testing.T) {
	r := NewRecommender()
	rec := r.Recommend(request(risk.LevelCritical, trust.LevelRestricted, trust.LevelRestricted))

	if rec.Action != Decline {
		t.Errorf("action = %s, want DECLINE", rec.Action)
	}
	if len(rec.Warnings) == 0 {
		t.Error("expected warnings for restricted parties at critical risk")
	}
	if len(rec.Alternatives) != 1 || rec.Alternatives[0].Action != ManualReview {
		t.Errorf("DECLINE should offer MANUAL_REVIEW alternative, got %+v", rec.Alternatives)
	}
}

func TestRecommendProceedsLowRiskTrusted(t *testing.T) {
	r := NewRecommender()
	rec := r.Recommend(request(risk.LevelLow, trust.LevelTrusted, trust.LevelVerified))

	if rec.Action != Proceed {
		t.Errorf("action = %s, want PROCEED", rec.Action)
	}
	if rec.Confidence <= 0.7 {
		t.Errorf("confidence = %f, want > 0.7", rec.Confidence)
	}
	if len(rec.Alternatives) != 0 {
		t.Errorf("PROCEED should carry no alternatives, got %+v", rec.Alternatives)
	}
}

func TestRecommendReasoningTrail(t *testing.T) {
	r := NewRecommender()
	rec := r.Recommend(request(risk.LevelMedium, trust.LevelStandard, trust.LevelTrusted))

	if len(rec.Reasoning) != 6 {
		t.Fatalf("expected 6 reasoning steps, got %d", len(rec.Reasoning))
	}

	wantFactors := []string{
		"Intent Classification", "Buyer Trust Score", "Seller Trust Score",
		"Risk Assessment", "Transaction Context", "Final Decision",
	}
	for i, step := range rec.Reasoning {
		if step.Step != i+1 {
			t.Errorf("step %d numbered %d", i, step.Step)
		}
		if step.Factor != wantFactors[i] {
			t.Errorf("step %d factor = %s, want %s", i+1, step.Factor, wantFactors[i])
		}
		if step.Evaluation == "" {
			t.Errorf("step %d has empty evaluation", i+1)
		}
	}

	final := rec.Reasoning[5]
	if final.Impact != ImpactNeutral {
		t.Errorf("final step impact = %s, want NEUTRAL", final.Impact)
	}
}

func TestRecommendUnknownIntentWarns(t *testing.T) {
	r := NewRecommender()
	req := request(risk.LevelLow, trust.LevelTrusted, trust.LevelTrusted)
	req.Intent = intent.TypeUnknown

	rec := r.Recommend(req)

	if rec.Reasoning[0].Impact != ImpactNegative {
		t.Errorf("unknown intent impact = %s, want NEGATIVE", rec.Reasoning[0].Impact)
	}
	found := false
	for _, w := range rec.Warnings {
		if w == "Unclear user intent may indicate confusion or potential fraud" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing unknown-intent warning, got %v", rec.Warnings)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	r := NewRecommender()
	req := request(risk.LevelHigh, trust.LevelNew, trust.LevelVerified)

	x := r.Recommend(req)
	y := r.Recommend(req)

	x.GeneratedAt = y.GeneratedAt
	if !reflect.DeepEqual(x, y) {
		t.Errorf("identical requests produced different recommendations:\n%+v\n%+v", x, y)
	}
}

func TestConfidenceBounds(t *testing.T) {
	r := NewRecommender()

	// Worst case: unknown intent, restricted parties, critical risk,
	// missing context.
	worst := request(risk.LevelCritical, trust.LevelRestricted, trust.LevelRestricted)
	worst.Intent = intent.TypeUnknown
	worst.TransactionContext = TransactionContext{}

	rec := r.Recommend(worst)
	if rec.Confidence < 0.3 || rec.Confidence > 0.99 {
		t.Errorf("confidence %f out of [0.3, 0.99]", rec.Confidence)
	}
	if rec.Confidence != 0.3 {
		t.Errorf("fully negative request should floor at 0.3, got %f", rec.Confidence)
	}

	// Best case: everything positive caps at 0.99.
	best := request(risk.LevelMinimal, trust.LevelVerified, trust.LevelVerified)
	rec = r.Recommend(best)
	if rec.Confidence != 0.99 {
		t.Errorf("fully positive request should cap at 0.99, got %f", rec.Confidence)
	}
}

func TestMissingContextLowersConfidence(t *testing.T) {
	r := NewRecommender()

	full := request(risk.LevelLow, trust.LevelTrusted, trust.LevelTrusted)
	partial := full
	partial.TransactionContext = TransactionContext{Amount: 250, Currency: "USD"}

	if r.Recommend(partial).Confidence >= r.Recommend(full).Confidence {
		t.Error("missing category should lower confidence")
	}
}

func TestMatrixCoversAllCombinations(t *testing.T) {
	riskLevels := []risk.Level{
		risk.LevelMinimal, risk.LevelLow, risk.LevelMedium, risk.LevelHigh, risk.LevelCritical,
	}
	trustLevels := []trust.Level{
		trust.LevelRestricted, trust.LevelNew, trust.LevelStandard, trust.LevelTrusted, trust.LevelVerified,
	}
	valid := map[Action]bool{
		Proceed: true, ProceedWithCaution: true, RequireVerification: true,
		ManualReview: true, Decline: true,
	}

	for _, rl := range riskLevels {
		for _, tl := range trustLevels {
			action := ActionFor(rl, tl, tl)
			if !valid[action] {
				t.Errorf("ActionFor(%s, %s) = %q, not a valid action", rl, tl, action)
			}
		}
	}
}

func TestMatrixKnownCells(t *testing.T) {
	tests := []struct {
		risk          risk.Level
		buyer, seller trust.Level
		want          Action
	}{
		{risk.LevelMinimal, trust.LevelVerified, trust.LevelVerified, Proceed},
		{risk.LevelMinimal, trust.LevelNew, trust.LevelVerified, ProceedWithCaution},
		{risk.LevelMinimal, trust.LevelRestricted, trust.LevelVerified, RequireVerification},
		{risk.LevelLow, trust.LevelStandard, trust.LevelTrusted, ProceedWithCaution},
		{risk.LevelMedium, trust.LevelStandard, trust.LevelStandard, RequireVerification},
		{risk.LevelMedium, trust.LevelRestricted, trust.LevelTrusted, ManualReview},
		{risk.LevelHigh, trust.LevelVerified, trust.LevelVerified, ProceedWithCaution},
		{risk.LevelHigh, trust.LevelRestricted, trust.LevelVerified, Decline},
		{risk.LevelCritical, trust.LevelVerified, trust.LevelVerified, RequireVerification},
		{risk.LevelCritical, trust.LevelNew, trust.LevelTrusted, Decline},
	}

	for _, tt := range tests {
		if got := ActionFor(tt.risk, tt.buyer, tt.seller); got != tt.want {
			t.Errorf("ActionFor(%s, %s, %s) = %s, want %s", tt.risk, tt.buyer, tt.seller, got, tt.want)
		}
	}
}

func TestMinTrustLevelDrivesLookup(t *testing.T) {
	// Order of the parties must not matter.
	a := ActionFor(risk.LevelHigh, trust.LevelRestricted, trust.LevelVerified)
	b := ActionFor(risk.LevelHigh, trust.LevelVerified, trust.LevelRestricted)
	if a != b {
		t.Errorf("lookup not symmetric: %s vs %s", a, b)
	}
	if a != Decline {
		t.Errorf("high risk with a restricted party = %s, want DECLINE", a)
	}
}

func TestAlternativesContract(t *testing.T) {
	for _, action := range []Action{ProceedWithCaution, RequireVerification, ManualReview, Decline} {
		alts := alternativesFor(action)
		if len(alts) == 0 {
			t.Errorf("%s should offer at least one alternative", action)
		}
		for _, alt := range alts {
			if alt.Action == action {
				t.Errorf("%s offers itself as an alternative", action)
			}
			if len(alt.Conditions) == 0 || len(alt.Tradeoffs) == 0 {
				t.Errorf("%s alternative %s missing conditions or tradeoffs", action, alt.Action)
			}
		}
	}

	if len(alternativesFor(Proceed)) != 0 {
		t.Error("PROCEED should have no alternatives")
	}
}
