// Package trust computes deterministic 0-100 trust scores for marketplace
// parties from their verification and history attributes.
//
// Seven weighted factors feed the score: verification status, transaction
// history, account age, rating, dispute ratio, response rate, and KYC level.
// The factor weights sum to 1.0 and each factor reports its contribution,
// so every score is fully explainable. Scoring is read-only: nothing here
// mutates party data.
package trust

import "time"

// Level is the trust tier derived from a numeric score.
type Level string

const (
	LevelVerified   Level = "VERIFIED"   // score >= 80
	LevelTrusted    Level = "TRUSTED"    // score >= 60
	LevelStandard   Level = "STANDARD"   // score >= 40
	LevelNew        Level = "NEW"        // score >= 20
	LevelRestricted Level = "RESTRICTED" // score < 20
)

// Tier thresholds.
const (
	ThresholdVerified = 80
	ThresholdTrusted  = 60
	ThresholdStandard = 40
	ThresholdNew      = 20
)

// levelOrder ranks tiers from least to most trusted.
var levelOrder = map[Level]int{
	LevelRestricted: 0,
	LevelNew:        1,
	LevelStandard:   2,
	LevelTrusted:    3,
	LevelVerified:   4,
}

// Rank returns the ordinal position of a level in the fixed tier ordering
// RESTRICTED < NEW < STANDARD < TRUSTED < VERIFIED. Unrecognized levels
// rank lowest.
func (l Level) Rank() int {
	return levelOrder[l]
}

// MinLevel returns the lower of two trust tiers.
func MinLevel(a, b Level) Level {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// KYCLevel is the identity verification tier a party has completed.
type KYCLevel string

const (
	KYCNone     KYCLevel = "none"
	KYCBasic    KYCLevel = "basic"
	KYCEnhanced KYCLevel = "enhanced"
	KYCFull     KYCLevel = "full"
)

// Factor is one weighted component of a trust score.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`        // 0-100
	Contribution float64 `json:"contribution"` // Value * Weight
}

// Score is a computed trust score with its full factor breakdown.
type Score struct {
	UserID     string    `json:"userId"`
	Score      int       `json:"score"` // 0-100
	Level      Level     `json:"level"`
	Factors    []Factor  `json:"factors"` // exactly 7, fixed order
	ComputedAt time.Time `json:"computedAt"`
}

// Input bundles the raw attributes a trust score is computed from.
type Input struct {
	UserID                 string    `json:"userId"`
	IsEmailVerified        bool      `json:"isEmailVerified"`
	IsPhoneVerified        bool      `json:"isPhoneVerified"`
	Is2FAEnabled           bool      `json:"is2faEnabled"`
	TotalTransactions      int       `json:"totalTransactions"`
	SuccessfulTransactions int       `json:"successfulTransactions"`
	AccountCreatedAt       time.Time `json:"accountCreatedAt"`
	AverageRating          float64   `json:"averageRating"` // 1-5
	TotalRatings           int       `json:"totalRatings"`
	DisputesRaised         int       `json:"disputesRaised"`
	DisputesLost           int       `json:"disputesLost"`
	ResponseRate           float64   `json:"responseRate"` // 0-1
	KYCLevel               KYCLevel  `json:"kycLevel"`

	// EvaluatedAt anchors the account-age calculation. Zero means "now";
	// callers that need reproducible results supply it explicitly.
	EvaluatedAt time.Time `json:"evaluatedAt,omitempty"`
}

// Comparison is the result of comparing two trust scores for a prospective
// transaction.
type Comparison struct {
	Compatible     bool   `json:"compatible"`
	RiskDelta      int    `json:"riskDelta"`
	Recommendation string `json:"recommendation"`
}
