package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soukly/nucleus/internal/trust"
)

// Factor categories, in the fixed order they appear in every Assessment.
const (
	FactorTrustDifferential = "trust_differential"
	FactorAmount            = "transaction_amount"
	FactorCategory          = "item_category"
	FactorVelocity          = "velocity"
	FactorGeographic        = "geographic"
	FactorTimePattern       = "time_pattern"
	FactorDevice            = "device_fingerprint"
)

// Factor weights (must sum to 1.0).
var factorWeights = map[string]float64{
	FactorTrustDifferential: 0.20,
	FactorAmount:            0.20,
	FactorCategory:          0.15,
	FactorVelocity:          0.15,
	FactorGeographic:        0.10,
	FactorTimePattern:       0.10,
	FactorDevice:            0.10,
}

// Amount thresholds in USD equivalent.
const (
	amountLow      = 100
	amountMedium   = 500
	amountHigh     = 2000
	amountVeryHigh = 10000
)

// highRiskCategories are item categories with elevated fraud rates.
var highRiskCategories = []string{
	"electronics",
	"luxury",
	"gift_cards",
	"cryptocurrency",
	"vehicles",
}

// highRiskCountries get enhanced due diligence regardless of party trust.
var highRiskCountries = map[string]bool{
	"XX": true,
	"YY": true,
	"ZZ": true,
}

// usdRates normalizes transaction amounts to USD. Unknown currencies pass
// through at parity.
var usdRates = map[string]float64{
	"USD": 1,
	"EUR": 1.1,
	"GBP": 1.27,
	"EGP": 0.032,
	"SAR": 0.27,
	"AED": 0.27,
}

// Assessor evaluates transaction risk.
type Assessor struct{}

// NewAssessor creates a risk assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess evaluates the seven risk factors and combines them into a single
// weighted score. Same request and context always produce the same
// assessment; only AssessedAt reflects the wall clock.
func (a *Assessor) Assess(req Request, ctx Context) Assessment {
	evals := []struct {
		factor Factor
		flag   *Flag
	}{
		assessTrustDifferential(ctx.BuyerTrust, ctx.SellerTrust),
		assessAmount(req.Amount, req.Currency),
		assessCategory(req.ItemCategory),
		assessVelocity(ctx.BuyerRecentTransactions, ctx.SellerRecentTransactions),
		assessGeographic(ctx.BuyerLocation, ctx.SellerLocation),
		assessTimePattern(ctx.TransactionTime),
		assessDevice(ctx.DeviceID, ctx.IsNewDevice),
	}

	factors := make([]Factor, 0, len(evals))
	flags := []Flag{}
	weighted := 0.0
	for _, e := range evals {
		factors = append(factors, e.factor)
		weighted += e.factor.Score * e.factor.Weight
		if e.flag != nil {
			flags = append(flags, *e.flag)
		}
	}

	score := int(math.Round(math.Min(100, math.Max(0, weighted))))

	return Assessment{
		TransactionID: req.TransactionID,
		OverallRisk:   LevelForScore(score),
		RiskScore:     score,
		Factors:       factors,
		Flags:         flags,
		AssessedAt:    time.Now().UTC(),
	}
}

// LevelForScore maps a numeric score to its risk tier.
func LevelForScore(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	case score >= 20:
		return LevelLow
	default:
		return LevelMinimal
	}
}

type evaluation = struct {
	factor Factor
	flag   *Flag
}

func assessTrustDifferential(buyer, seller trust.Score) evaluation {
	minTrust := buyer.Score
	if seller.Score < minTrust {
		minTrust = seller.Score
	}
	gap := buyer.Score - seller.Score
	if gap < 0 {
		gap = -gap
	}

	var score float64
	var flag *Flag

	switch {
	case minTrust < 20:
		score = 90
		flag = &Flag{
			Code:           "LOW_TRUST_PARTY",
			Severity:       LevelHigh,
			Message:        "One party has restricted trust level",
			Recommendation: "Require additional verification before proceeding",
		}
	case minTrust < 40:
		score = 60
	case gap > 40:
		score = 50
		flag = &Flag{
			Code:           "TRUST_GAP",
			Severity:       LevelMedium,
			Message:        "Significant trust gap between parties",
			Recommendation: "Consider escrow protection",
		}
	default:
		score = math.Max(0, 30-float64(minTrust)*0.3)
	}

	return evaluation{
		factor: Factor{
			Category:    FactorTrustDifferential,
			Score:       score,
			Weight:      factorWeights[FactorTrustDifferential],
			Description: fmt.Sprintf("Trust scores: Buyer %d, Seller %d", buyer.Score, seller.Score),
		},
		flag: flag,
	}
}

func assessAmount(amount float64, currency string) evaluation {
	usd := normalizeToUSD(amount, currency)

	var score float64
	var flag *Flag

	switch {
	case usd >= amountVeryHigh:
		score = 80
		flag = &Flag{
			Code:           "VERY_HIGH_VALUE",
			Severity:       LevelHigh,
			Message:        fmt.Sprintf("Transaction amount exceeds $%d", amountVeryHigh),
			Recommendation: "Require enhanced verification and escrow",
		}
	case usd >= amountHigh:
		score = 60
		flag = &Flag{
			Code:           "HIGH_VALUE",
			Severity:       LevelMedium,
			Message:        fmt.Sprintf("Transaction amount exceeds $%d", amountHigh),
			Recommendation: "Consider escrow protection",
		}
	case usd >= amountMedium:
		score = 40
	case usd >= amountLow:
		score = 20
	default:
		score = 10
	}

	return evaluation{
		factor: Factor{
			Category:    FactorAmount,
			Score:       score,
			Weight:      factorWeights[FactorAmount],
			Description: fmt.Sprintf("Amount: %.2f %s (~$%.0f USD)", amount, currency, usd),
		},
		flag: flag,
	}
}

func assessCategory(category string) evaluation {
	normalized := strings.ToLower(category)
	highRisk := false
	for _, c := range highRiskCategories {
		if strings.Contains(normalized, c) {
			highRisk = true
			break
		}
	}

	score := 20.0
	var flag *Flag
	if highRisk {
		score = 70
		flag = &Flag{
			Code:           "HIGH_RISK_CATEGORY",
			Severity:       LevelMedium,
			Message:        fmt.Sprintf("Item category %q is flagged as high-risk", category),
			Recommendation: "Apply enhanced fraud checks",
		}
	}

	return evaluation{
		factor: Factor{
			Category:    FactorCategory,
			Score:       score,
			Weight:      factorWeights[FactorCategory],
			Description: "Category: " + category,
		},
		flag: flag,
	}
}

func assessVelocity(buyerRecent, sellerRecent int) evaluation {
	maxRecent := buyerRecent
	if sellerRecent > maxRecent {
		maxRecent = sellerRecent
	}

	var score float64
	var flag *Flag

	switch {
	case maxRecent > 20:
		score = 80
		flag = &Flag{
			Code:           "HIGH_VELOCITY",
			Severity:       LevelHigh,
			Message:        "Unusually high transaction frequency detected",
			Recommendation: "Review for potential fraud or money laundering",
		}
	case maxRecent > 10:
		score = 50
		flag = &Flag{
			Code:           "ELEVATED_VELOCITY",
			Severity:       LevelMedium,
			Message:        "Elevated transaction frequency",
			Recommendation: "Monitor for patterns",
		}
	case maxRecent > 5:
		score = 30
	default:
		score = 10
	}

	return evaluation{
		factor: Factor{
			Category:    FactorVelocity,
			Score:       score,
			Weight:      factorWeights[FactorVelocity],
			Description: fmt.Sprintf("Recent transactions: Buyer %d, Seller %d", buyerRecent, sellerRecent),
		},
		flag: flag,
	}
}

func assessGeographic(buyer, seller *Location) evaluation {
	if buyer == nil || seller == nil {
		return evaluation{
			factor: Factor{
				Category:    FactorGeographic,
				Score:       30,
				Weight:      factorWeights[FactorGeographic],
				Description: "Location data unavailable",
			},
		}
	}

	score := 40.0
	if buyer.Country == seller.Country {
		score = 10
	}

	var flag *Flag
	if highRiskCountries[buyer.Country] || highRiskCountries[seller.Country] {
		score = 70
		flag = &Flag{
			Code:           "HIGH_RISK_GEOGRAPHY",
			Severity:       LevelMedium,
			Message:        "Transaction involves high-risk geography",
			Recommendation: "Apply enhanced due diligence",
		}
	}

	return evaluation{
		factor: Factor{
			Category:    FactorGeographic,
			Score:       score,
			Weight:      factorWeights[FactorGeographic],
			Description: fmt.Sprintf("Buyer: %s, Seller: %s", buyer.Country, seller.Country),
		},
		flag: flag,
	}
}

func assessTimePattern(at time.Time) evaluation {
	hour := at.UTC().Hour()
	offHours := hour < 6 || hour > 22

	score := 10.0
	var flag *Flag
	if offHours {
		score = 40
		flag = &Flag{
			Code:           "OFF_HOURS",
			Severity:       LevelLow,
			Message:        "Transaction initiated during off-peak hours",
			Recommendation: "No action required, informational only",
		}
	}

	return evaluation{
		factor: Factor{
			Category:    FactorTimePattern,
			Score:       score,
			Weight:      factorWeights[FactorTimePattern],
			Description: "Transaction time: " + at.UTC().Format(time.RFC3339),
		},
		flag: flag,
	}
}

func assessDevice(deviceID string, isNew bool) evaluation {
	if deviceID == "" {
		return evaluation{
			factor: Factor{
				Category:    FactorDevice,
				Score:       50,
				Weight:      factorWeights[FactorDevice],
				Description: "Device fingerprint unavailable",
			},
			flag: &Flag{
				Code:           "NO_DEVICE_ID",
				Severity:       LevelLow,
				Message:        "Device identification unavailable",
				Recommendation: "Consider requiring device verification",
			},
		}
	}

	short := deviceID
	if len(short) > 8 {
		short = short[:8]
	}

	score := 10.0
	var flag *Flag
	if isNew {
		score = 50
		flag = &Flag{
			Code:           "NEW_DEVICE",
			Severity:       LevelLow,
			Message:        "Transaction from new/unrecognized device",
			Recommendation: "Consider additional authentication",
		}
	}

	return evaluation{
		factor: Factor{
			Category:    FactorDevice,
			Score:       score,
			Weight:      factorWeights[FactorDevice],
			Description: fmt.Sprintf("Device: %s..., New: %t", short, isNew),
		},
		flag: flag,
	}
}

func normalizeToUSD(amount float64, currency string) float64 {
	rate, ok := usdRates[strings.ToUpper(currency)]
	if !ok {
		rate = 1
	}
	return math.Round(amount * rate)
}
