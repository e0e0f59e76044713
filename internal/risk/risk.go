// Package risk implements deterministic transaction risk assessment.
//
// Every prospective transaction is evaluated against 7 weighted factors:
// trust differential, amount, item category, velocity, geography, time
// pattern, and device fingerprint. Scores range 0-100 and map to five risk
// tiers. Assessment is advisory only: it never blocks a transaction, it
// reports factors and flags for a human or downstream policy layer.
package risk

import (
	"time"

	"github.com/soukly/nucleus/internal/trust"
)

// Level is the risk tier derived from a numeric score.
type Level string

const (
	LevelCritical Level = "CRITICAL" // score >= 80
	LevelHigh     Level = "HIGH"     // score >= 60
	LevelMedium   Level = "MEDIUM"   // score >= 40
	LevelLow      Level = "LOW"      // score >= 20
	LevelMinimal  Level = "MINIMAL"  // score < 20
)

// levelOrder ranks tiers from least to most severe.
var levelOrder = map[Level]int{
	LevelMinimal:  0,
	LevelLow:      1,
	LevelMedium:   2,
	LevelHigh:     3,
	LevelCritical: 4,
}

// Rank returns the ordinal position of a level in the fixed severity
// ordering MINIMAL < LOW < MEDIUM < HIGH < CRITICAL.
func (l Level) Rank() int {
	return levelOrder[l]
}

// Factor is one weighted component of a risk assessment.
type Factor struct {
	Category    string  `json:"category"`
	Score       float64 `json:"score"` // 0-100
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Flag marks a factor threshold crossing. Every flag carries a concrete
// recommendation for the caller.
type Flag struct {
	Code           string `json:"code"`
	Severity       Level  `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// Assessment is the result of evaluating a single transaction.
type Assessment struct {
	TransactionID string    `json:"transactionId"`
	OverallRisk   Level     `json:"overallRisk"`
	RiskScore     int       `json:"riskScore"` // 0-100
	Factors       []Factor  `json:"factors"`   // exactly 7, fixed order
	Flags         []Flag    `json:"flags"`
	AssessedAt    time.Time `json:"assessedAt"`
}

// Location is a party's coarse geolocation.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Request describes the transaction under assessment.
type Request struct {
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ItemCategory  string  `json:"itemCategory"`
}

// Context carries the surrounding signals: both parties' trust scores,
// recent activity counts, locations, timing, and device info. All of it is
// injected by the caller — the assessor performs no lookups of its own.
type Context struct {
	BuyerTrust               trust.Score `json:"buyerTrust"`
	SellerTrust              trust.Score `json:"sellerTrust"`
	BuyerRecentTransactions  int         `json:"buyerRecentTransactions"`
	SellerRecentTransactions int         `json:"sellerRecentTransactions"`
	BuyerLocation            *Location   `json:"buyerLocation,omitempty"`
	SellerLocation           *Location   `json:"sellerLocation,omitempty"`
	TransactionTime          time.Time   `json:"transactionTime"`
	DeviceID                 string      `json:"deviceId,omitempty"`
	IsNewDevice              bool        `json:"isNewDevice,omitempty"`
}
