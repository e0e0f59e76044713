package trust

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func established(t *testing.T) Input {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Input{
		UserID:                 "user-1",
		IsEmailVerified:        true,
		IsPhoneVerified:        true,
		Is2FAEnabled:           true,
		TotalTransactions:      50,
		SuccessfulTransactions: 48,
		AccountCreatedAt:       now.AddDate(-1, 0, 0),
		AverageRating:          4.8,
		TotalRatings:           30,
		DisputesRaised:         1,
		DisputesLost:           0,
		ResponseRate:           0.95,
		KYCLevel:               KYCEnhanced,
		EvaluatedAt:            now,
	}
}

func TestComputeEstablishedUserIsVerified(t *testing.T) {
	s := NewScorer()
	score := s.Compute(established(t))

	if score.Score < 80 {
		t.Errorf("established user score = %d, want >= 80", score.Score)
	}
	if score.Level != LevelVerified {
		t.Errorf("level = %s, want VERIFIED", score.Level)
	}
}

func TestComputeFreshAccountIsNew(t *testing.T) {
	s := NewScorer()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	input := Input{
		UserID:           "user-2",
		IsEmailVerified:  true,
		AccountCreatedAt: now,
		EvaluatedAt:      now,
		KYCLevel:         KYCNone,
	}

	score := s.Compute(input)

	if score.Score >= 50 {
		t.Errorf("fresh account score = %d, want < 50", score.Score)
	}
	if score.Level != LevelNew {
		t.Errorf("level = %s, want NEW", score.Level)
	}
}

func TestComputeScoreBounds(t *testing.T) {
	s := NewScorer()

	worst := Input{UserID: "worst", AccountCreatedAt: time.Now(), EvaluatedAt: time.Now()}
	best := established(t)
	best.KYCLevel = KYCFull
	best.AverageRating = 5
	best.TotalRatings = 100
	best.ResponseRate = 1
	best.DisputesRaised = 0

	for _, input := range []Input{worst, best} {
		score := s.Compute(input)
		if score.Score < 0 || score.Score > 100 {
			t.Errorf("score %d out of [0,100] for %s", score.Score, input.UserID)
		}
	}
}

func TestComputeFactorInvariants(t *testing.T) {
	s := NewScorer()
	score := s.Compute(established(t))

	if len(score.Factors) != 7 {
		t.Fatalf("expected 7 factors, got %d", len(score.Factors))
	}

	wantOrder := []string{
		FactorVerification, FactorTransactions, FactorAccountAge,
		FactorRating, FactorDisputes, FactorResponseRate, FactorKYC,
	}
	weightSum := 0.0
	for i, f := range score.Factors {
		if f.Name != wantOrder[i] {
			t.Errorf("factor %d = %s, want %s", i, f.Name, wantOrder[i])
		}
		if f.Value < 0 || f.Value > 100 {
			t.Errorf("factor %s value %f out of [0,100]", f.Name, f.Value)
		}
		if math.Abs(f.Contribution-f.Value*f.Weight) > 1e-9 {
			t.Errorf("factor %s contribution %f != value*weight %f", f.Name, f.Contribution, f.Value*f.Weight)
		}
		weightSum += f.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-9 {
		t.Errorf("factor weights sum to %f, want 1.0", weightSum)
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := NewScorer()
	input := established(t)

	a := s.Compute(input)
	b := s.Compute(input)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different scores:\n%+v\n%+v", a, b)
	}
}

func TestComputeMonotonicInResponseRate(t *testing.T) {
	s := NewScorer()
	input := established(t)

	prev := -1
	for _, rate := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		input.ResponseRate = rate
		score := s.Compute(input).Score
		if score < prev {
			t.Errorf("score decreased from %d to %d as response rate rose to %f", prev, score, rate)
		}
		prev = score
	}
}

func TestVerificationScoreAdditive(t *testing.T) {
	tests := []struct {
		email, phone, tfa bool
		want              float64
	}{
		{false, false, false, 0},
		{true, false, false, 30},
		{false, true, false, 40},
		{false, false, true, 30},
		{true, true, true, 100},
	}

	for _, tt := range tests {
		input := Input{IsEmailVerified: tt.email, IsPhoneVerified: tt.phone, Is2FAEnabled: tt.tfa}
		if got := verificationScore(input); got != tt.want {
			t.Errorf("verificationScore(%v,%v,%v) = %f, want %f", tt.email, tt.phone, tt.tfa, got, tt.want)
		}
	}
}

func TestAccountAgeSteps(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		days int
		want float64
	}{
		{0, 10},
		{6, 10},
		{7, 30},
		{29, 30},
		{45, 50},
		{100, 70},
		{200, 85},
		{365, 100},
		{1000, 100},
	}

	for _, tt := range tests {
		input := Input{AccountCreatedAt: at.AddDate(0, 0, -tt.days)}
		if got := accountAgeScore(input, at); got != tt.want {
			t.Errorf("accountAgeScore(%d days) = %f, want %f", tt.days, got, tt.want)
		}
	}
}

func TestRatingScoreNeutralWithoutRatings(t *testing.T) {
	if got := ratingScore(Input{TotalRatings: 0, AverageRating: 5}); got != 50 {
		t.Errorf("ratingScore with no ratings = %f, want 50", got)
	}

	// With 10+ ratings the confidence factor saturates and the score is
	// the normalized rating alone.
	got := ratingScore(Input{TotalRatings: 20, AverageRating: 5})
	if got != 100 {
		t.Errorf("ratingScore(5.0 avg, 20 ratings) = %f, want 100", got)
	}
}

func TestDisputeScoreNoTransactions(t *testing.T) {
	if got := disputeScore(Input{TotalTransactions: 0}); got != 100 {
		t.Errorf("disputeScore with no transactions = %f, want 100", got)
	}
}

func TestDisputeScorePenalties(t *testing.T) {
	// 10 disputes out of 20 txns: ratio 0.5 -> base 0. Clamped at 0.
	heavy := Input{TotalTransactions: 20, DisputesRaised: 10, DisputesLost: 10}
	if got := disputeScore(heavy); got != 0 {
		t.Errorf("disputeScore heavy = %f, want 0", got)
	}

	// 1 dispute out of 100, none lost: 100 - 2 = 98.
	light := Input{TotalTransactions: 100, DisputesRaised: 1, DisputesLost: 0}
	if got := disputeScore(light); got != 98 {
		t.Errorf("disputeScore light = %f, want 98", got)
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{100, LevelVerified},
		{80, LevelVerified},
		{79, LevelTrusted},
		{60, LevelTrusted},
		{59, LevelStandard},
		{40, LevelStandard},
		{39, LevelNew},
		{20, LevelNew},
		{19, LevelRestricted},
		{0, LevelRestricted},
	}

	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestMinLevel(t *testing.T) {
	if got := MinLevel(LevelVerified, LevelNew); got != LevelNew {
		t.Errorf("MinLevel(VERIFIED, NEW) = %s, want NEW", got)
	}
	if got := MinLevel(LevelRestricted, LevelTrusted); got != LevelRestricted {
		t.Errorf("MinLevel(RESTRICTED, TRUSTED) = %s, want RESTRICTED", got)
	}
}

func TestCompareRestrictedParty(t *testing.T) {
	s := NewScorer()

	cmp := s.Compare(Score{Score: 15}, Score{Score: 90})
	if cmp.Compatible {
		t.Error("expected incompatible when one party is below 20")
	}
	if cmp.RiskDelta != 75 {
		t.Errorf("riskDelta = %d, want 75", cmp.RiskDelta)
	}
	if cmp.Recommendation == "" {
		t.Error("recommendation must be non-empty")
	}
}

func TestCompareTrustGap(t *testing.T) {
	s := NewScorer()

	cmp := s.Compare(Score{Score: 30}, Score{Score: 90})
	if !cmp.Compatible {
		t.Error("expected compatible despite gap")
	}
	if cmp.Recommendation != "Significant trust gap. Consider additional verification." {
		t.Errorf("unexpected recommendation: %q", cmp.Recommendation)
	}

	close := s.Compare(Score{Score: 70, Level: LevelTrusted}, Score{Score: 80, Level: LevelVerified})
	if !close.Compatible || close.RiskDelta != 10 {
		t.Errorf("close comparison = %+v", close)
	}
}
