package model

import "strings"

// LiftBand is the qualitative interpretation of a rule's lift.
type LiftBand string

const (
	LiftVeryStrong LiftBand = "very strong"
	LiftStrong     LiftBand = "strong"
	LiftModerate   LiftBand = "moderate"
	LiftWeak       LiftBand = "weak"
	LiftNegative   LiftBand = "negative"
)

// InterpretLift maps a lift value to its band using fixed thresholds.
func InterpretLift(lift float64) LiftBand {
	switch {
	case lift >= 3:
		return LiftVeryStrong
	case lift >= 2:
		return LiftStrong
	case lift >= 1.5:
		return LiftModerate
	case lift > 1:
		return LiftWeak
	default:
		return LiftNegative
	}
}

// AssociationRule is a mined rule owned by one cluster. Antecedent and
// consequent are disjoint, sorted category sets.
type AssociationRule struct {
	Antecedent     []string
	Consequent     []string
	Interpretation LiftBand
	Support        float64
	Confidence     float64
	Lift           float64
	Cluster        int
}

// CooccurrencePair is one entry of the diagnostic co-occurrence table
// produced when no cluster yields any rule. It is a raw pair count, not
// a rule, and is reported as such.
type CooccurrencePair struct {
	CategoryA string
	CategoryB string
	Count     int
	Percent   float64 // of multi-item baskets
}

// HumanizeCategory turns a canonical category name into display form,
// e.g. "office_supplies" -> "Office Supplies".
func HumanizeCategory(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// HumanizeCategories renders a category set for display, e.g.
// ["nest_usa","bags_more"] -> "Bags More, Nest Usa" (input order kept).
func HumanizeCategories(categories []string) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = HumanizeCategory(c)
	}
	return strings.Join(parts, ", ")
}
