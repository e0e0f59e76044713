// Package intent classifies weakly-typed marketplace signals into a typed
// user intent with a confidence level.
//
// Classification is a pure table lookup: each recognized signal source
// contributes a fixed weight to the intent its value maps to, and the
// intent with the highest accumulated weight wins. No model calls, no
// hidden state — same signals always produce the same classification.
package intent

import "time"

// Type is the classified user intent.
type Type string

const (
	TypeBuy      Type = "BUY"
	TypeSell     Type = "SELL"
	TypeExchange Type = "EXCHANGE"
	TypeTransfer Type = "TRANSFER"
	TypeUnknown  Type = "UNKNOWN"
)

// ConfidenceLevel buckets the numeric confidence.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// Signal records a single matched signal and its contribution.
type Signal struct {
	Source string  `json:"source"`
	Weight float64 `json:"weight"`
	Value  string  `json:"value"`
}

// Classification is the result of classifying a signal bag.
type Classification struct {
	Type            Type            `json:"type"`
	Confidence      float64         `json:"confidence"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	Signals         []Signal        `json:"signals"`
	Timestamp       time.Time       `json:"timestamp"`
}
