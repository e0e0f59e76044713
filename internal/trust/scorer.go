package trust

import (
	"math"
	"time"
)

// Factor names, in the fixed order they appear in every Score.
const (
	FactorVerification = "verification_status"
	FactorTransactions = "transaction_history"
	FactorAccountAge   = "account_age"
	FactorRating       = "rating_score"
	FactorDisputes     = "dispute_ratio"
	FactorResponseRate = "response_rate"
	FactorKYC          = "kyc_level"
)

// Factor weights (must sum to 1.0).
var factorWeights = map[string]float64{
	FactorVerification: 0.25,
	FactorTransactions: 0.20,
	FactorAccountAge:   0.15,
	FactorRating:       0.15,
	FactorDisputes:     0.10,
	FactorResponseRate: 0.10,
	FactorKYC:          0.05,
}

// Scorer computes trust scores.
type Scorer struct{}

// NewScorer creates a trust scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Compute calculates a trust score from the input attributes. The same
// input always produces the same score; only ComputedAt reflects the
// wall clock.
func (s *Scorer) Compute(input Input) Score {
	at := input.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	subScores := []struct {
		name  string
		value float64
	}{
		{FactorVerification, verificationScore(input)},
		{FactorTransactions, transactionScore(input)},
		{FactorAccountAge, accountAgeScore(input, at)},
		{FactorRating, ratingScore(input)},
		{FactorDisputes, disputeScore(input)},
		{FactorResponseRate, responseScore(input)},
		{FactorKYC, kycScore(input)},
	}

	factors := make([]Factor, 0, len(subScores))
	total := 0.0
	for _, sub := range subScores {
		w := factorWeights[sub.name]
		factors = append(factors, Factor{
			Name:         sub.name,
			Weight:       w,
			Value:        sub.value,
			Contribution: sub.value * w,
		})
		total += sub.value * w
	}

	score := int(math.Round(math.Min(100, math.Max(0, total))))

	return Score{
		UserID:     input.UserID,
		Score:      score,
		Level:      LevelForScore(score),
		Factors:    factors,
		ComputedAt: at,
	}
}

// LevelForScore maps a numeric score to its trust tier.
func LevelForScore(score int) Level {
	switch {
	case score >= ThresholdVerified:
		return LevelVerified
	case score >= ThresholdTrusted:
		return LevelTrusted
	case score >= ThresholdStandard:
		return LevelStandard
	case score >= ThresholdNew:
		return LevelNew
	default:
		return LevelRestricted
	}
}

// verificationScore: 30 for email, 40 for phone, 30 for 2FA, additive.
func verificationScore(input Input) float64 {
	score := 0.0
	if input.IsEmailVerified {
		score += 30
	}
	if input.IsPhoneVerified {
		score += 40
	}
	if input.Is2FAEnabled {
		score += 30
	}
	return score
}

// transactionScore blends success rate (up to 70) with a volume bonus
// capped at 30. No transactions scores zero.
func transactionScore(input Input) float64 {
	if input.TotalTransactions == 0 {
		return 0
	}
	successRate := float64(input.SuccessfulTransactions) / float64(input.TotalTransactions)
	volumeBonus := math.Min(30, float64(input.TotalTransactions)*0.5)
	return math.Round(successRate*70 + volumeBonus)
}

// accountAgeScore steps up with account age, capping at one year.
func accountAgeScore(input Input, at time.Time) float64 {
	ageInDays := int(at.Sub(input.AccountCreatedAt).Hours() / 24)
	switch {
	case ageInDays < 7:
		return 10
	case ageInDays < 30:
		return 30
	case ageInDays < 90:
		return 50
	case ageInDays < 180:
		return 70
	case ageInDays < 365:
		return 85
	default:
		return 100
	}
}

// ratingScore normalizes the 1-5 average rating to 0-100, pulled toward a
// neutral 50 when few ratings exist. Zero ratings is exactly neutral.
func ratingScore(input Input) float64 {
	if input.TotalRatings == 0 {
		return 50
	}
	normalized := ((input.AverageRating - 1) / 4) * 100
	confidence := math.Min(1, float64(input.TotalRatings)/10)
	return math.Round(normalized*confidence + 50*(1-confidence))
}

// disputeScore penalizes raised disputes (200x the dispute ratio) and lost
// disputes (up to 30 points). A party with no transactions has nothing to
// dispute and takes no penalty.
func disputeScore(input Input) float64 {
	if input.TotalTransactions == 0 {
		return 100
	}
	disputeRatio := float64(input.DisputesRaised) / float64(input.TotalTransactions)
	lostRatio := float64(input.DisputesLost) / math.Max(1, float64(input.DisputesRaised))

	base := 100 - disputeRatio*200
	penalty := lostRatio * 30
	return math.Round(math.Max(0, math.Min(100, base-penalty)))
}

func responseScore(input Input) float64 {
	return math.Round(input.ResponseRate * 100)
}

func kycScore(input Input) float64 {
	switch input.KYCLevel {
	case KYCBasic:
		return 40
	case KYCEnhanced:
		return 70
	case KYCFull:
		return 100
	default:
		return 0
	}
}

// Compare evaluates whether two parties' trust scores are compatible for a
// transaction. Either party below the NEW threshold forces a manual review;
// a gap above 40 points is compatible but worth extra verification.
func (s *Scorer) Compare(a, b Score) Comparison {
	diff := a.Score - b.Score
	if diff < 0 {
		diff = -diff
	}
	minScore := a.Score
	if b.Score < minScore {
		minScore = b.Score
	}

	if minScore < ThresholdNew {
		return Comparison{
			Compatible:     false,
			RiskDelta:      diff,
			Recommendation: "One party has restricted trust level. Manual review required.",
		}
	}

	if diff > 40 {
		return Comparison{
			Compatible:     true,
			RiskDelta:      diff,
			Recommendation: "Significant trust gap. Consider additional verification.",
		}
	}

	return Comparison{
		Compatible:     true,
		RiskDelta:      diff,
		Recommendation: "Trust levels are compatible for transaction.",
	}
}
