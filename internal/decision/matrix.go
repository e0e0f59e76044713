package decision

import (
	"github.com/soukly/nucleus/internal/risk"
	"github.com/soukly/nucleus/internal/trust"
)

// decisionMatrix maps every RiskLevel x TrustLevel pair to an action. Rows
// are indexed by risk.Level.Rank() (MINIMAL..CRITICAL), columns by
// trust.Level.Rank() (RESTRICTED..VERIFIED). The fixed-size array makes an
// omitted combination a compile error rather than a silent map miss.
var decisionMatrix = [5][5]Action{
	// MINIMAL
	{RequireVerification, ProceedWithCaution, Proceed, Proceed, Proceed},
	// LOW
	{RequireVerification, ProceedWithCaution, ProceedWithCaution, Proceed, Proceed},
	// MEDIUM
	{ManualReview, RequireVerification, RequireVerification, ProceedWithCaution, ProceedWithCaution},
	// HIGH
	{Decline, ManualReview, RequireVerification, RequireVerification, ProceedWithCaution},
	// CRITICAL
	{Decline, Decline, ManualReview, ManualReview, RequireVerification},
}

// ActionFor looks up the matrix using the weaker party's trust tier.
func ActionFor(riskLevel risk.Level, buyer, seller trust.Level) Action {
	minTrust := trust.MinLevel(buyer, seller)
	return decisionMatrix[riskLevel.Rank()][minTrust.Rank()]
}
