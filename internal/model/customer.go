package model

// Segment labels assigned from raw RFM scores, before clustering.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentAtRisk             = "At Risk"
	SegmentCantLose           = "Cant Lose"
	SegmentHibernating        = "Hibernating"
	SegmentNeedAttention      = "Need Attention"
)

// BinningPolicy records how a metric was split into quintiles.
type BinningPolicy string

const (
	// BinningQuantile is rank-based equal-population binning.
	BinningQuantile BinningPolicy = "quantile"
	// BinningWidth is the equal-width fallback used when a metric has
	// too few distinct values to support five population bins.
	BinningWidth BinningPolicy = "width"
)

// CustomerFeatures is one row of the per-customer feature table.
type CustomerFeatures struct {
	Proportions map[string]float64 // category -> share of quantity, sums to 1
	RFMScore    string             // concatenated digits, e.g. "545"
	Segment     string
	CustomerID  int64
	Length      float64 // tenure: months if supplied by the source, else days between first and last transaction
	Monetary    float64
	CLV         float64
	Recency     int // whole days since reference date
	Frequency   int // distinct transactions
	RScore      int
	FScore      int
	MScore      int
	RFMTotal    int
	Cluster     int // -1 until assigned
}

// FeatureManifest names, in order, the columns fed to the clustering
// engine. It is built once by the feature stage and passed explicitly so
// downstream stages never have to rediscover columns by convention.
type FeatureManifest struct {
	ScoreColumns      []string
	ProportionColumns []string
	Binning           map[string]BinningPolicy // metric name -> policy used
}

// Columns returns the full ordered feature list.
func (m FeatureManifest) Columns() []string {
	cols := make([]string, 0, len(m.ScoreColumns)+len(m.ProportionColumns))
	cols = append(cols, m.ScoreColumns...)
	cols = append(cols, m.ProportionColumns...)
	return cols
}
