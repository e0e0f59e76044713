package intent

import (
	"sort"
	"strings"
	"time"
)

// Signal source names recognized by the classifier. Values for any other
// source are ignored.
const (
	SourceActionKeyword   = "action_keyword"
	SourcePageContext     = "page_context"
	SourceUserHistory     = "user_history"
	SourceItemInteraction = "item_interaction"
)

// Per-source contribution weights. With all four sources firing the
// accumulated score for a single intent tops out at 1.0.
var sourceWeights = map[string]float64{
	SourceActionKeyword:   0.4,
	SourcePageContext:     0.2,
	SourceUserHistory:     0.2,
	SourceItemInteraction: 0.2,
}

// minWinningScore is the floor below which the classifier refuses to commit
// to an intent and reports UNKNOWN instead.
const minWinningScore = 0.2

// actionKeywords maps substrings of free-text action values to intents.
var actionKeywords = []struct {
	keyword string
	intent  Type
}{
	{"buy", TypeBuy},
	{"purchase", TypeBuy},
	{"order", TypeBuy},
	{"sell", TypeSell},
	{"list", TypeSell},
	{"offer", TypeSell},
	{"swap", TypeExchange},
	{"exchange", TypeExchange},
	{"trade", TypeExchange},
	{"send", TypeTransfer},
	{"transfer", TypeTransfer},
	{"ship", TypeTransfer},
}

// pageContexts maps exact page identifiers to intents.
var pageContexts = map[string]Type{
	"product_detail": TypeBuy,
	"checkout":       TypeBuy,
	"search_results": TypeBuy,
	"create_listing": TypeSell,
	"my_listings":    TypeSell,
	"seller_hub":     TypeSell,
	"swap_center":    TypeExchange,
	"wallet":         TypeTransfer,
	"shipping":       TypeTransfer,
}

// userHistories maps exact behavior markers to intents.
var userHistories = map[string]Type{
	"frequent_buyer":   TypeBuy,
	"frequent_seller":  TypeSell,
	"frequent_swapper": TypeExchange,
	"frequent_sender":  TypeTransfer,
}

// itemInteractions maps exact interaction markers to intents.
var itemInteractions = map[string]Type{
	"viewed_item":   TypeBuy,
	"saved_item":    TypeBuy,
	"added_to_cart": TypeBuy,
	"listed_item":   TypeSell,
	"offered_swap":  TypeExchange,
}

// Classifier turns a bag of signals into a typed intent.
type Classifier struct{}

// NewClassifier creates an intent classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores the signal map against the static source tables and
// returns the winning intent with its confidence and matched signals.
//
// Ties between intents with equal accumulated scores are broken by lexical
// order of the intent name, so results never depend on map iteration order.
func (c *Classifier) Classify(signals map[string]string) Classification {
	scores := make(map[Type]float64)
	var matched []Signal

	if v, ok := signals[SourceActionKeyword]; ok {
		if intent, hit := matchActionKeyword(v); hit {
			scores[intent] += sourceWeights[SourceActionKeyword]
			matched = append(matched, Signal{
				Source: SourceActionKeyword,
				Weight: sourceWeights[SourceActionKeyword],
				Value:  v,
			})
		}
	}
	if v, ok := signals[SourcePageContext]; ok {
		if intent, hit := pageContexts[v]; hit {
			scores[intent] += sourceWeights[SourcePageContext]
			matched = append(matched, Signal{
				Source: SourcePageContext,
				Weight: sourceWeights[SourcePageContext],
				Value:  v,
			})
		}
	}
	if v, ok := signals[SourceUserHistory]; ok {
		if intent, hit := userHistories[v]; hit {
			scores[intent] += sourceWeights[SourceUserHistory]
			matched = append(matched, Signal{
				Source: SourceUserHistory,
				Weight: sourceWeights[SourceUserHistory],
				Value:  v,
			})
		}
	}
	if v, ok := signals[SourceItemInteraction]; ok {
		if intent, hit := itemInteractions[v]; hit {
			scores[intent] += sourceWeights[SourceItemInteraction]
			matched = append(matched, Signal{
				Source: SourceItemInteraction,
				Weight: sourceWeights[SourceItemInteraction],
				Value:  v,
			})
		}
	}

	winner, confidence := pickWinner(scores)
	if confidence < minWinningScore {
		winner = TypeUnknown
	}

	if matched == nil {
		matched = []Signal{}
	}

	return Classification{
		Type:            winner,
		Confidence:      confidence,
		ConfidenceLevel: confidenceLevel(confidence),
		Signals:         matched,
		Timestamp:       time.Now().UTC(),
	}
}

// matchActionKeyword scans the keyword table in declaration order and
// returns the intent of the first substring hit.
func matchActionKeyword(value string) (Type, bool) {
	lower := strings.ToLower(value)
	for _, entry := range actionKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.intent, true
		}
	}
	return TypeUnknown, false
}

// pickWinner returns the intent with the highest accumulated score. On an
// exact tie the lexically smallest intent name wins.
func pickWinner(scores map[Type]float64) (Type, float64) {
	if len(scores) == 0 {
		return TypeUnknown, 0
	}

	intents := make([]Type, 0, len(scores))
	for t := range scores {
		intents = append(intents, t)
	}
	sort.Slice(intents, func(i, j int) bool { return intents[i] < intents[j] })

	best := intents[0]
	for _, t := range intents[1:] {
		if scores[t] > scores[best] {
			best = t
		}
	}
	return best, scores[best]
}

func confidenceLevel(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
