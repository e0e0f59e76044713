package match

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/soukly/nucleus/internal/trust"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func profile(id string, trustScore int) UserProfile {
	return UserProfile{
		UserID:     id,
		TrustScore: trust.Score{UserID: id, Score: trustScore},
		Categories: []string{"electronics"},
		History: TransactionHistory{
			TotalTransactions: 60,
			SuccessRate:       0.95,
			AverageRating:     4.8,
		},
		Availability: AvailabilityHigh,
		LastActive:   evalTime,
	}
}

func TestFindMatchesRanksAndLimits(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{RequesterID: "me", Limit: 2, EvaluatedAt: evalTime}

	candidates := []UserProfile{
		profile("low", 35),
		profile("high", 92),
		profile("mid", 70),
		profile("me", 99), // self, must be skipped
	}

	matches := m.FindMatches(req, profile("me", 80), candidates)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches after limit, got %d", len(matches))
	}
	if matches[0].UserID != "high" || matches[1].UserID != "mid" {
		t.Errorf("order = %s, %s; want high, mid", matches[0].UserID, matches[1].UserID)
	}
	if matches[0].MatchScore < matches[1].MatchScore {
		t.Error("matches not sorted by score descending")
	}
}

func TestFindMatchesMinTrustFilter(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{
		RequesterID: "me",
		Criteria:    Criteria{MinTrustScore: 60},
		EvaluatedAt: evalTime,
	}

	matches := m.FindMatches(req, profile("me", 80), []UserProfile{
		profile("weak", 40),
		profile("strong", 75),
	})

	if len(matches) != 1 || matches[0].UserID != "strong" {
		t.Fatalf("min trust filter failed: %+v", matches)
	}
}

func TestFindMatchesTieBreakByUserID(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{RequesterID: "me", EvaluatedAt: evalTime}

	matches := m.FindMatches(req, profile("me", 80), []UserProfile{
		profile("bravo", 70),
		profile("alpha", 70),
	})

	if len(matches) != 2 {
		t.Fatalf("got %d matches", len(matches))
	}
	if matches[0].MatchScore != matches[1].MatchScore {
		t.Fatalf("expected equal scores, got %d and %d", matches[0].MatchScore, matches[1].MatchScore)
	}
	if matches[0].UserID != "alpha" {
		t.Errorf("tie should rank alpha first, got %s", matches[0].UserID)
	}
}

func TestFindMatchesLowTrustOverride(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{RequesterID: "me", EvaluatedAt: evalTime}

	// Excellent compatibility, but trust below the ceiling.
	matches := m.FindMatches(req, profile("me", 80), []UserProfile{profile("shady", 20)})

	if len(matches) != 1 {
		t.Fatalf("got %d matches", len(matches))
	}
	got := matches[0]
	if got.Recommendation != Caution && got.Recommendation != NotRecommended {
		t.Errorf("low-trust candidate recommended %s", got.Recommendation)
	}
	if got.Recommendation == Caution && got.MatchScore < thresholdAcceptable {
		t.Errorf("CAUTION requires score >= %d, got %d", thresholdAcceptable, got.MatchScore)
	}
}

func TestFindMatchesDeterministic(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{RequesterID: "me", Criteria: Criteria{Categories: []string{"electronics"}}, EvaluatedAt: evalTime}
	requester := profile("me", 80)
	candidates := []UserProfile{profile("a", 55), profile("b", 88)}

	x := m.FindMatches(req, requester, candidates)
	y := m.FindMatches(req, requester, candidates)

	if !reflect.DeepEqual(x, y) {
		t.Errorf("identical inputs produced different rankings:\n%+v\n%+v", x, y)
	}
}

func TestFindMatchesScoreBounds(t *testing.T) {
	m := NewMatcher(DefaultModel())
	req := Request{RequesterID: "me", EvaluatedAt: evalTime}

	empty := UserProfile{UserID: "empty", History: TransactionHistory{AverageRating: 1}, LastActive: evalTime}
	matches := m.FindMatches(req, profile("me", 80), []UserProfile{empty, profile("full", 100)})

	for _, c := range matches {
		if c.MatchScore < 0 || c.MatchScore > 100 {
			t.Errorf("%s match score %d out of [0,100]", c.UserID, c.MatchScore)
		}
	}
}

func TestLocationScoreBuckets(t *testing.T) {
	criteria := &GeoCriteria{
		Coordinates: Coordinates{Latitude: 30.0, Longitude: 31.0},
		RadiusKm:    100,
	}

	tests := []struct {
		name      string
		candidate *Coordinates
		want      int
	}{
		{"same point", &Coordinates{Latitude: 30.0, Longitude: 31.0}, 100},
		// ~0.35 deg latitude ~= 39 km: within half radius.
		{"nearby", &Coordinates{Latitude: 30.35, Longitude: 31.0}, 80},
		// ~0.6 deg ~= 67 km: within three quarters.
		{"mid range", &Coordinates{Latitude: 30.6, Longitude: 31.0}, 60},
		// ~0.85 deg ~= 94 km: inside the radius.
		{"edge of radius", &Coordinates{Latitude: 30.85, Longitude: 31.0}, 40},
		// ~2 deg ~= 222 km: outside.
		{"outside", &Coordinates{Latitude: 32.0, Longitude: 31.0}, 0},
		{"no candidate location", nil, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locationScore(criteria, tt.candidate); got != tt.want {
				t.Errorf("locationScore = %d, want %d", got, tt.want)
			}
		})
	}

	if got := locationScore(nil, &Coordinates{}); got != 50 {
		t.Errorf("no criteria should be neutral 50, got %d", got)
	}
}

func TestHistoryScore(t *testing.T) {
	tests := []struct {
		name string
		h    TransactionHistory
		want int
	}{
		{"strong", TransactionHistory{TotalTransactions: 60, SuccessRate: 0.95, AverageRating: 4.8}, 97},
		{"no history", TransactionHistory{AverageRating: 1}, 0},
		{"volume capped", TransactionHistory{TotalTransactions: 500, SuccessRate: 1.0, AverageRating: 5}, 100},
		{"mixed", TransactionHistory{TotalTransactions: 20, SuccessRate: 0.5, AverageRating: 3}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := historyScore(tt.h); got != tt.want {
				t.Errorf("historyScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPreferenceScore(t *testing.T) {
	candidate := UserProfile{
		Categories: []string{"electronics", "books"},
		PriceRange: &PriceRange{Min: 100, Max: 500},
	}

	if got := preferenceScore(Criteria{}, candidate); got != 50 {
		t.Errorf("no criteria = %d, want neutral 50", got)
	}

	full := Criteria{
		Categories: []string{"electronics", "books"},
		PriceRange: &PriceRange{Min: 100, Max: 500},
	}
	if got := preferenceScore(full, candidate); got != 100 {
		t.Errorf("full overlap = %d, want 100", got)
	}

	half := Criteria{Categories: []string{"electronics", "furniture"}}
	if got := preferenceScore(half, candidate); got != 65 {
		t.Errorf("half category overlap = %d, want 65", got)
	}

	disjointPrice := Criteria{PriceRange: &PriceRange{Min: 1000, Max: 2000}}
	if got := preferenceScore(disjointPrice, candidate); got != 50 {
		t.Errorf("disjoint price ranges = %d, want 50", got)
	}
}

func TestPriceOverlap(t *testing.T) {
	if got := priceOverlap(PriceRange{Min: 0, Max: 100}, PriceRange{Min: 50, Max: 150}); got != 0.5 {
		t.Errorf("partial overlap = %f, want 0.5", got)
	}
	if got := priceOverlap(PriceRange{Min: 0, Max: 10}, PriceRange{Min: 20, Max: 30}); got != 0 {
		t.Errorf("disjoint = %f, want 0", got)
	}
	if got := priceOverlap(PriceRange{Min: 0, Max: 1000}, PriceRange{Min: 100, Max: 200}); got != 1 {
		t.Errorf("contained range = %f, want 1", got)
	}
}

func TestAvailabilityScoreDecay(t *testing.T) {
	tests := []struct {
		name       string
		a          Availability
		lastActive time.Time
		want       int
	}{
		{"high, active today", AvailabilityHigh, evalTime, 100},
		{"high, 3 days idle", AvailabilityHigh, evalTime.AddDate(0, 0, -3), 95},
		{"medium, 10 days idle", AvailabilityMedium, evalTime.AddDate(0, 0, -10), 48},
		{"low, 60 days idle", AvailabilityLow, evalTime.AddDate(0, 0, -60), 15},
		{"unknown signal", Availability(""), evalTime, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availabilityScore(tt.a, tt.lastActive, evalTime); got != tt.want {
				t.Errorf("availabilityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultModelWeightsSumToOne(t *testing.T) {
	w := DefaultModel().Weights
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("default weights sum to %f, want 1.0", w.Sum())
	}
}

func TestRetrainProducesNewSnapshot(t *testing.T) {
	base := DefaultModel()
	next, err := base.Retrain(Weights{Trust: 0.5, Location: 0.2, History: 0.15, Preference: 0.1, Availability: 0.05})
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}

	if next.Version != base.Version+1 {
		t.Errorf("version = %d, want %d", next.Version, base.Version+1)
	}
	if base.Weights.Trust != 0.35 {
		t.Error("retrain mutated the original snapshot")
	}
}

func TestRetrainRejectsInvalidWeights(t *testing.T) {
	base := DefaultModel()

	if _, err := base.Retrain(Weights{Trust: 0.9, Location: 0.2}); err == nil {
		t.Error("expected error for weights not summing to 1.0")
	}
	if _, err := base.Retrain(Weights{Trust: 1.2, Location: -0.2}); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestRetrainedModelChangesScoring(t *testing.T) {
	req := Request{RequesterID: "me", EvaluatedAt: evalTime}
	candidates := []UserProfile{profile("c", 40)}

	base := NewMatcher(DefaultModel()).FindMatches(req, profile("me", 80), candidates)

	trustHeavy, err := DefaultModel().Retrain(Weights{Trust: 1.0})
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	shifted := NewMatcher(trustHeavy).FindMatches(req, profile("me", 80), candidates)

	if base[0].MatchScore == shifted[0].MatchScore {
		t.Error("retrained weights should change the blended score")
	}
}
