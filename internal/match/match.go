// Package match ranks candidate counterparties for a marketplace user.
//
// Matching blends the candidate's trust score with four compatibility
// factors (location, history, preference, availability) under a versioned
// weight model. All scoring is pure: same request, profiles, and model
// always yield the same ranked list.
package match

import (
	"time"

	"github.com/soukly/nucleus/internal/trust"
)

// Recommendation is the advisory verdict attached to each candidate.
type Recommendation string

const (
	HighlyRecommended Recommendation = "HIGHLY_RECOMMENDED" // matchScore >= 85
	Recommended       Recommendation = "RECOMMENDED"        // matchScore >= 70
	Acceptable        Recommendation = "ACCEPTABLE"         // matchScore >= 50
	Caution           Recommendation = "CAUTION"            // matchScore >= 30
	NotRecommended    Recommendation = "NOT_RECOMMENDED"    // matchScore < 30
)

// Availability is a coarse signal of how responsive a user tends to be.
type Availability string

const (
	AvailabilityHigh   Availability = "high"
	AvailabilityMedium Availability = "medium"
	AvailabilityLow    Availability = "low"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PriceRange bounds what a user wants to pay or charge.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TransactionHistory summarizes a user's completed deal record.
type TransactionHistory struct {
	TotalTransactions int     `json:"totalTransactions"`
	SuccessRate       float64 `json:"successRate"`   // 0-1
	AverageRating     float64 `json:"averageRating"` // 1-5
}

// UserProfile is everything the matcher knows about one user. Profiles are
// supplied by the caller; the matcher performs no lookups.
type UserProfile struct {
	UserID       string             `json:"userId"`
	TrustScore   trust.Score        `json:"trustScore"`
	Location     *Coordinates       `json:"location,omitempty"`
	Categories   []string           `json:"categories"`
	PriceRange   *PriceRange        `json:"priceRange,omitempty"`
	History      TransactionHistory `json:"transactionHistory"`
	Availability Availability       `json:"availability"`
	LastActive   time.Time          `json:"lastActive"`
}

// Criteria narrows the candidate pool and shapes compatibility scoring.
type Criteria struct {
	MinTrustScore int          `json:"minTrustScore,omitempty"`
	Location      *GeoCriteria `json:"location,omitempty"`
	Categories    []string     `json:"categories,omitempty"`
	PriceRange    *PriceRange  `json:"priceRange,omitempty"`
}

// GeoCriteria asks for candidates within radiusKm of a point.
type GeoCriteria struct {
	Coordinates
	RadiusKm float64 `json:"radiusKm"`
}

// Request is one matching call.
type Request struct {
	RequesterID string   `json:"requesterId"`
	Criteria    Criteria `json:"criteria"`
	Limit       int      `json:"limit"`
	// EvaluatedAt anchors the last-active decay so results stay
	// reproducible. Zero means now.
	EvaluatedAt time.Time `json:"evaluatedAt,omitempty"`
}

// Compatibility holds the four sub-scores, each 0-100.
type Compatibility struct {
	LocationScore     int `json:"locationScore"`
	HistoryScore      int `json:"historyScore"`
	PreferenceScore   int `json:"preferenceScore"`
	AvailabilityScore int `json:"availabilityScore"`
}

// Candidate is one ranked match.
type Candidate struct {
	UserID         string         `json:"userId"`
	MatchScore     int            `json:"matchScore"` // 0-100
	TrustScore     int            `json:"trustScore"`
	Compatibility  Compatibility  `json:"compatibility"`
	Recommendation Recommendation `json:"recommendation"`
}
