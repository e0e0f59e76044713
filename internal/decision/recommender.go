package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/soukly/nucleus/internal/intent"
	"github.com/soukly/nucleus/internal/risk"
	"github.com/soukly/nucleus/internal/trust"
)

// Confidence bounds and adjustments.
const (
	baseConfidence    = 0.9
	confidenceFloor   = 0.3
	confidenceCeiling = 0.99

	negativeStepPenalty = 0.1
	missingAmountPenalty   = 0.1
	missingCategoryPenalty = 0.05
	positiveStepBoost      = 0.02
)

// highValueThreshold marks a transaction amount worth calling out in the
// context step.
const highValueThreshold = 10000

// Recommender produces advisory recommendations.
type Recommender struct{}

// NewRecommender creates a decision recommender.
func NewRecommender() *Recommender {
	return &Recommender{}
}

type stepResult struct {
	evaluation string
	impact     Impact
	warning    string
}

// Recommend evaluates the five reasoning factors, resolves the action from
// the decision matrix, and attaches confidence, alternatives, and
// warnings. Same request always yields the same recommendation; only
// GeneratedAt reflects the wall clock.
func (r *Recommender) Recommend(req Request) Recommendation {
	steps := []struct {
		factor string
		result stepResult
	}{
		{"Intent Classification", evaluateIntent(req.Intent)},
		{"Buyer Trust Score", evaluateTrust(req.BuyerTrust, "Buyer")},
		{"Seller Trust Score", evaluateTrust(req.SellerTrust, "Seller")},
		{"Risk Assessment", evaluateRisk(req.RiskAssessment.OverallRisk)},
		{"Transaction Context", evaluateContext(req.TransactionContext)},
	}

	reasoning := make([]ReasoningStep, 0, len(steps)+1)
	warnings := []string{}
	for i, s := range steps {
		reasoning = append(reasoning, ReasoningStep{
			Step:       i + 1,
			Factor:     s.factor,
			Evaluation: s.result.evaluation,
			Impact:     s.result.impact,
		})
		if s.result.warning != "" {
			warnings = append(warnings, s.result.warning)
		}
	}

	action := ActionFor(req.RiskAssessment.OverallRisk, req.BuyerTrust.Level, req.SellerTrust.Level)
	confidence := calculateConfidence(req.TransactionContext, reasoning)

	reasoning = append(reasoning, ReasoningStep{
		Step:       len(steps) + 1,
		Factor:     "Final Decision",
		Evaluation: fmt.Sprintf("Based on %d factors, recommending: %s", len(steps), action),
		Impact:     ImpactNeutral,
	})

	return Recommendation{
		RequestID:    req.RequestID,
		Action:       action,
		Confidence:   confidence,
		Reasoning:    reasoning,
		Alternatives: alternativesFor(action),
		Warnings:     warnings,
		GeneratedAt:  time.Now().UTC(),
	}
}

func evaluateIntent(t intent.Type) stepResult {
	if t == intent.TypeUnknown {
		return stepResult{
			evaluation: "Intent could not be determined",
			impact:     ImpactNegative,
			warning:    "Unclear user intent may indicate confusion or potential fraud",
		}
	}
	return stepResult{
		evaluation: fmt.Sprintf("Clear %s intent detected", t),
		impact:     ImpactPositive,
	}
}

func evaluateTrust(s trust.Score, party string) stepResult {
	switch s.Level {
	case trust.LevelRestricted:
		return stepResult{
			evaluation: fmt.Sprintf("%s has restricted trust level (%d)", party, s.Score),
			impact:     ImpactNegative,
			warning:    fmt.Sprintf("%s trust level requires additional verification", party),
		}
	case trust.LevelNew:
		return stepResult{
			evaluation: fmt.Sprintf("%s is a new user (%d)", party, s.Score),
			impact:     ImpactNeutral,
			warning:    fmt.Sprintf("%s has limited transaction history", party),
		}
	case trust.LevelVerified:
		return stepResult{
			evaluation: fmt.Sprintf("%s is fully verified (%d)", party, s.Score),
			impact:     ImpactPositive,
		}
	}

	impact := ImpactNeutral
	if s.Score >= trust.ThresholdTrusted {
		impact = ImpactPositive
	}
	return stepResult{
		evaluation: fmt.Sprintf("%s trust level: %s (%d)", party, s.Level, s.Score),
		impact:     impact,
	}
}

func evaluateRisk(level risk.Level) stepResult {
	switch level {
	case risk.LevelCritical:
		return stepResult{
			evaluation: "Critical risk level detected",
			impact:     ImpactNegative,
			warning:    "Multiple high-risk factors present",
		}
	case risk.LevelHigh:
		return stepResult{
			evaluation: "High risk level detected",
			impact:     ImpactNegative,
			warning:    "Elevated risk requires additional safeguards",
		}
	case risk.LevelMedium:
		return stepResult{evaluation: "Moderate risk level", impact: ImpactNeutral}
	case risk.LevelLow:
		return stepResult{evaluation: "Low risk level", impact: ImpactPositive}
	default:
		return stepResult{evaluation: "Minimal risk detected", impact: ImpactPositive}
	}
}

func evaluateContext(ctx TransactionContext) stepResult {
	var issues []string
	if ctx.Amount == 0 {
		issues = append(issues, "amount missing")
	} else if ctx.Amount > highValueThreshold {
		issues = append(issues, "high value transaction")
	}
	if ctx.ItemCategory == "" {
		issues = append(issues, "category unknown")
	}

	switch {
	case len(issues) == 0:
		return stepResult{
			evaluation: "Transaction context is complete and standard",
			impact:     ImpactPositive,
		}
	case len(issues) >= 2:
		return stepResult{
			evaluation: "Context issues: " + strings.Join(issues, ", "),
			impact:     ImpactNegative,
			warning:    "Incomplete or unusual transaction context",
		}
	default:
		return stepResult{
			evaluation: "Minor context note: " + strings.Join(issues, ", "),
			impact:     ImpactNeutral,
		}
	}
}

func calculateConfidence(ctx TransactionContext, reasoning []ReasoningStep) float64 {
	confidence := baseConfidence

	for _, step := range reasoning {
		switch step.Impact {
		case ImpactNegative:
			confidence -= negativeStepPenalty
		case ImpactPositive:
			confidence += positiveStepBoost
		}
	}

	if ctx.Amount == 0 {
		confidence -= missingAmountPenalty
	}
	if ctx.ItemCategory == "" {
		confidence -= missingCategoryPenalty
	}

	if confidence > confidenceCeiling {
		return confidenceCeiling
	}
	if confidence < confidenceFloor {
		return confidenceFloor
	}
	return confidence
}

// alternativesFor suggests fallback actions for everything short of a
// clean PROCEED.
func alternativesFor(action Action) []AlternativeAction {
	switch action {
	case Decline:
		return []AlternativeAction{{
			Action:     ManualReview,
			Conditions: []string{"If buyer provides additional verification", "If seller vouches for buyer"},
			Tradeoffs:  []string{"Increased operational cost", "Delayed transaction"},
		}}
	case ManualReview:
		return []AlternativeAction{
			{
				Action:     RequireVerification,
				Conditions: []string{"If automated verification passes", "If risk score improves"},
				Tradeoffs:  []string{"May miss edge cases", "Relies on verification accuracy"},
			},
			{
				Action:     Decline,
				Conditions: []string{"If verification fails", "If additional red flags emerge"},
				Tradeoffs:  []string{"Lost transaction", "Potential false positive"},
			},
		}
	case RequireVerification:
		return []AlternativeAction{{
			Action:     ProceedWithCaution,
			Conditions: []string{"If user has verified phone", "If transaction amount is reduced"},
			Tradeoffs:  []string{"Slightly higher risk", "Better user experience"},
		}}
	case ProceedWithCaution:
		return []AlternativeAction{{
			Action:     Proceed,
			Conditions: []string{"If escrow is used", "If buyer protection is enabled"},
			Tradeoffs:  []string{"Minimal additional risk", "Faster completion"},
		}}
	default:
		return []AlternativeAction{}
	}
}
