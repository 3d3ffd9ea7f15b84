package model

// StrategyType classifies a promotional strategy entry.
type StrategyType string

const (
	StrategyBundling     StrategyType = "Bundling"
	StrategyCrossSelling StrategyType = "Cross-selling"
	StrategyLoyalty      StrategyType = "Loyalty Program"
	StrategyReengagement StrategyType = "Re-engagement"
	StrategyRetention    StrategyType = "Retention"
	StrategyEngagement   StrategyType = "Engagement"
)

// Strategy is one promotional recommendation for a cluster. Lift and
// Confidence are nil for the RFM-baseline entries, which carry no rule
// metrics.
type Strategy struct {
	Lift        *float64
	Confidence  *float64
	Type        StrategyType
	Description string
	Rationale   string
	Cluster     int
}
