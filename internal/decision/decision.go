// Package decision turns intent, trust, and risk signals into an
// explainable advisory recommendation.
//
// The recommended action comes from a fixed RiskLevel x TrustLevel matrix,
// accompanied by a step-by-step reasoning trail, a calibrated confidence,
// and alternative actions with their conditions and tradeoffs. Everything
// here is advisory: the engine never executes, blocks, or auto-approves a
// transaction.
package decision

import (
	"time"

	"github.com/soukly/nucleus/internal/intent"
	"github.com/soukly/nucleus/internal/risk"
	"github.com/soukly/nucleus/internal/trust"
)

// Action is the advisory verdict for a prospective transaction.
type Action string

const (
	Proceed             Action = "PROCEED"
	ProceedWithCaution  Action = "PROCEED_WITH_CAUTION"
	RequireVerification Action = "REQUIRE_VERIFICATION"
	ManualReview        Action = "MANUAL_REVIEW"
	Decline             Action = "DECLINE"
)

// Impact classifies how a reasoning step moved the recommendation.
type Impact string

const (
	ImpactPositive Impact = "POSITIVE"
	ImpactNeutral  Impact = "NEUTRAL"
	ImpactNegative Impact = "NEGATIVE"
)

// ReasoningStep is one entry in the explainability trail.
type ReasoningStep struct {
	Step       int    `json:"step"`
	Factor     string `json:"factor"`
	Evaluation string `json:"evaluation"`
	Impact     Impact `json:"impact"`
}

// AlternativeAction is a fallback the caller may take instead of the
// primary action, with the conditions under which it applies and what it
// costs.
type AlternativeAction struct {
	Action     Action   `json:"action"`
	Conditions []string `json:"conditions"`
	Tradeoffs  []string `json:"tradeoffs"`
}

// TransactionContext carries the optional deal details that shape the
// context reasoning step and the confidence adjustments.
type TransactionContext struct {
	Amount       float64 `json:"amount,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	ItemCategory string  `json:"itemCategory,omitempty"`
}

// Request bundles the upstream signals for one recommendation.
type Request struct {
	RequestID          string             `json:"requestId"`
	Intent             intent.Type        `json:"intent"`
	BuyerTrust         trust.Score        `json:"buyerTrust"`
	SellerTrust        trust.Score        `json:"sellerTrust"`
	RiskAssessment     risk.Assessment    `json:"riskAssessment"`
	TransactionContext TransactionContext `json:"transactionContext"`
}

// Recommendation is the full advisory output.
type Recommendation struct {
	RequestID    string              `json:"requestId"`
	Action       Action              `json:"action"`
	Confidence   float64             `json:"confidence"` // 0.3-0.99
	Reasoning    []ReasoningStep     `json:"reasoning"`
	Alternatives []AlternativeAction `json:"alternatives"`
	Warnings     []string            `json:"warnings"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}
