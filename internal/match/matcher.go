package match

import (
	"math"
	"sort"
	"time"
)

// Recommendation thresholds on the blended match score.
const (
	thresholdHighlyRecommended = 85
	thresholdRecommended       = 70
	thresholdAcceptable        = 50
	thresholdCaution           = 30
)

// lowTrustCeiling caps how well a candidate can be recommended regardless
// of compatibility: below this trust score the verdict is never better
// than CAUTION.
const lowTrustCeiling = 30

// Matcher ranks candidates under a fixed model snapshot.
type Matcher struct {
	model Model
}

// NewMatcher creates a matcher bound to the given model.
func NewMatcher(model Model) *Matcher {
	return &Matcher{model: model}
}

// Model returns the snapshot this matcher scores with.
func (m *Matcher) Model() Model {
	return m.model
}

// FindMatches scores and ranks candidates against the request. Candidates
// equal to the requester or below the minimum trust floor are skipped.
// Results are sorted by match score descending, ties broken by userId
// ascending so rankings are stable, and truncated to request.Limit when
// positive.
func (m *Matcher) FindMatches(req Request, requester UserProfile, candidates []UserProfile) []Candidate {
	at := req.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	matches := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == req.RequesterID {
			continue
		}
		if req.Criteria.MinTrustScore > 0 && c.TrustScore.Score < req.Criteria.MinTrustScore {
			continue
		}

		compat := Compatibility{
			LocationScore:     locationScore(req.Criteria.Location, c.Location),
			HistoryScore:      historyScore(c.History),
			PreferenceScore:   preferenceScore(req.Criteria, c),
			AvailabilityScore: availabilityScore(c.Availability, c.LastActive, at),
		}
		score := m.blend(c.TrustScore.Score, compat)

		matches = append(matches, Candidate{
			UserID:         c.UserID,
			MatchScore:     score,
			TrustScore:     c.TrustScore.Score,
			Compatibility:  compat,
			Recommendation: recommend(score, c.TrustScore.Score),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].UserID < matches[j].UserID
	})

	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	return matches
}

func (m *Matcher) blend(trustScore int, c Compatibility) int {
	w := m.model.Weights
	weighted := float64(trustScore)*w.Trust +
		float64(c.LocationScore)*w.Location +
		float64(c.HistoryScore)*w.History +
		float64(c.PreferenceScore)*w.Preference +
		float64(c.AvailabilityScore)*w.Availability
	return int(math.Round(math.Min(100, math.Max(0, weighted))))
}

func recommend(matchScore, trustScore int) Recommendation {
	if trustScore < lowTrustCeiling {
		if matchScore >= thresholdAcceptable {
			return Caution
		}
		return NotRecommended
	}

	switch {
	case matchScore >= thresholdHighlyRecommended:
		return HighlyRecommended
	case matchScore >= thresholdRecommended:
		return Recommended
	case matchScore >= thresholdAcceptable:
		return Acceptable
	case matchScore >= thresholdCaution:
		return Caution
	default:
		return NotRecommended
	}
}

// locationScore buckets the candidate's distance from the requested point
// into quarters of the search radius. No location criteria is neutral; a
// candidate with no location scores low but is not excluded.
func locationScore(criteria *GeoCriteria, candidate *Coordinates) int {
	if criteria == nil {
		return 50
	}
	if candidate == nil {
		return 20
	}

	distance := haversineKm(criteria.Latitude, criteria.Longitude, candidate.Latitude, candidate.Longitude)
	switch {
	case distance <= criteria.RadiusKm*0.25:
		return 100
	case distance <= criteria.RadiusKm*0.5:
		return 80
	case distance <= criteria.RadiusKm*0.75:
		return 60
	case distance <= criteria.RadiusKm:
		return 40
	default:
		return 0
	}
}

// historyScore rewards volume (0-30), success rate (0-40), and average
// rating (0-30).
func historyScore(h TransactionHistory) int {
	volume := math.Min(30, float64(h.TotalTransactions)*0.5)
	success := h.SuccessRate * 40
	rating := ((h.AverageRating - 1) / 4) * 30
	return int(math.Round(volume + success + rating))
}

// preferenceScore starts neutral and adds category overlap and price range
// compatibility when the request specifies them.
func preferenceScore(criteria Criteria, candidate UserProfile) int {
	score := 50.0

	if len(criteria.Categories) > 0 {
		wanted := make(map[string]bool, len(criteria.Categories))
		for _, c := range criteria.Categories {
			wanted[c] = true
		}
		overlap := 0
		for _, c := range candidate.Categories {
			if wanted[c] {
				overlap++
			}
		}
		score += float64(overlap) / float64(len(criteria.Categories)) * 30
	}

	if criteria.PriceRange != nil && candidate.PriceRange != nil {
		score += priceOverlap(*criteria.PriceRange, *candidate.PriceRange) * 20
	}

	return int(math.Min(100, math.Round(score)))
}

// availabilityScore maps the coarse availability signal to a base score,
// then decays it by how long the candidate has been inactive as of the
// evaluation time.
func availabilityScore(a Availability, lastActive, at time.Time) int {
	var score float64
	switch a {
	case AvailabilityHigh:
		score = 100
	case AvailabilityMedium:
		score = 60
	case AvailabilityLow:
		score = 30
	default:
		score = 50
	}

	daysSinceActive := int(at.Sub(lastActive).Hours() / 24)
	switch {
	case daysSinceActive > 30:
		score *= 0.5
	case daysSinceActive > 7:
		score *= 0.8
	case daysSinceActive > 1:
		score *= 0.95
	}

	return int(math.Round(score))
}

// priceOverlap returns the shared span of two ranges as a fraction of the
// smaller range, 0 when they are disjoint.
func priceOverlap(a, b PriceRange) float64 {
	start := math.Max(a.Min, b.Min)
	end := math.Min(a.Max, b.Max)
	if start >= end {
		return 0
	}

	smaller := math.Min(a.Max-a.Min, b.Max-b.Min)
	if smaller <= 0 {
		return 0
	}
	return (end - start) / smaller
}

// haversineKm is the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
