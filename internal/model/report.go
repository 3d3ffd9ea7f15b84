package model

import "time"

// StageCount records row counts around one preprocessing stage so no
// row-drop goes unaccounted for.
type StageCount struct {
	Stage   string
	Before  int
	After   int
	Dropped int
}

// SkippedCluster records a cluster excluded from mining and why.
type SkippedCluster struct {
	Reason  string
	Cluster int
	Baskets int
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	StartedAt       time.Time
	ReferenceDate   time.Time
	RunID           string
	Stages          []StageCount
	SkippedClusters []SkippedCluster
	Binning         map[string]BinningPolicy
	Customers       int
	Transactions    int
	Categories      int
	SelectedK       int
	AlternateK      int
	RuleCount       int
	TotalRevenue    float64
}
