package model

// Stats holds summary statistics for one raw RFM metric within a cluster.
type Stats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// CategoryShare is one entry in a cluster's dominant-category ranking.
type CategoryShare struct {
	Category string
	Share    float64 // mean proportion across the cluster's customers
}

// Archetype names assigned to clusters from their mean RFM scores. The
// decision table is total: every cluster gets exactly one.
const (
	ArchetypeChampions          = "High-Value Champions"
	ArchetypeLoyalCustomers     = "Loyal Customers"
	ArchetypePotentialLoyalists = "Potential Loyalists"
	ArchetypeAtRisk             = "At Risk"
	ArchetypeHibernating        = "Hibernating/Lost"
	ArchetypeNeedAttention      = "Need Attention"
)

// ClusterProfile aggregates one cluster's characteristics. It is derived
// from the clustered feature table and recomputed whenever assignments
// change.
type ClusterProfile struct {
	Archetype     string
	Description   string
	TopCategories []CategoryShare
	Recency       Stats
	Frequency     Stats
	Monetary      Stats
	MeanRScore    float64
	MeanFScore    float64
	MeanMScore    float64
	Percent       float64
	ID            int
	Count         int
}

// KMetrics records the validity indices observed for one candidate k
// during the model-selection sweep.
type KMetrics struct {
	K                int
	Inertia          float64
	Silhouette       float64
	DaviesBouldin    float64
	CalinskiHarabasz float64
}

// SweepResult is the outcome of the k-selection sweep.
type SweepResult struct {
	Metrics    []KMetrics
	SelectedK  int
	AlternateK int // Davies-Bouldin recommendation when it disagrees, else 0
}
