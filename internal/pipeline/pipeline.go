// Package pipeline orchestrates the four analysis stages: preprocessing,
// RFM/LRFM scoring, clustering, and per-cluster association mining with
// strategy synthesis. Each stage is a pure transformation; the pipeline
// owns every intermediate table and nothing survives a run except the
// returned result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segmint/segmint/internal/cluster"
	"github.com/segmint/segmint/internal/clv"
	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/mining"
	"github.com/segmint/segmint/internal/model"
	"github.com/segmint/segmint/internal/preprocess"
	"github.com/segmint/segmint/internal/rfm"
	"github.com/segmint/segmint/internal/strategy"
)

// Config is the full configuration surface of one pipeline run.
type Config struct {
	// ReferenceDate overrides the recency reference date.
	ReferenceDate *time.Time
	// Progress receives sweep/mining progress for UI layers.
	Progress func(stage string, done, total int)
	Cluster  cluster.Config
	Mining   mining.Config
	Weights  clv.Weights
}

// DefaultConfig returns the canonical defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Cluster: cluster.DefaultConfig(),
		Mining:  mining.DefaultConfig(),
		Weights: clv.Weights{Length: 0.25, Recency: 0.25, Frequency: 0.25, Monetary: 0.25},
	}
}

// Validate rejects malformed configuration before any work happens.
func (c Config) Validate() error {
	if _, err := c.Weights.Normalize(); err != nil {
		return err
	}
	if c.Cluster.K != 0 && (c.Cluster.K < 2 || c.Cluster.K > 10) {
		return &common.ConfigError{Field: "n_clusters", Reason: "must be 0 (auto) or in [2, 10]"}
	}
	if c.Cluster.K == 0 && (c.Cluster.KMin < 2 || c.Cluster.KMax < c.Cluster.KMin || c.Cluster.KMax > 10) {
		return &common.ConfigError{Field: "k_selection_range", Reason: "must satisfy 2 <= min <= max <= 10"}
	}
	switch {
	case c.Mining.MinSupport <= 0 || c.Mining.MinSupport > 1:
		return &common.ConfigError{Field: "min_support", Reason: "must be in (0, 1]"}
	case c.Mining.MinConfidence < 0 || c.Mining.MinConfidence > 1:
		return &common.ConfigError{Field: "min_confidence", Reason: "must be in [0, 1]"}
	case c.Mining.MinLift < 0:
		return &common.ConfigError{Field: "min_lift", Reason: "must be >= 0"}
	}
	return nil
}

// Result holds every output table of one run.
type Result struct {
	Report       model.RunReport
	Features     []*model.CustomerFeatures
	Manifest     model.FeatureManifest
	Profiles     []model.ClusterProfile
	Rules        []model.AssociationRule
	Cooccurrence []model.CooccurrencePair
	Strategies   []model.Strategy
	Sweep        model.SweepResult
	Transactions []model.Transaction
	K            int
}

// Run executes the whole pipeline over raw records. Data flows strictly
// forward; re-run the pipeline whenever the dataset or any parameter
// changes.
func Run(ctx context.Context, records []model.RawRecord, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	slog.Info("pipeline starting", "run_id", runID, "rows", len(records))

	cleaned, reference, summary, err := preprocess.Clean(records, preprocess.Options{
		ReferenceDate: cfg.ReferenceDate,
	})
	if err != nil {
		return nil, err
	}

	features, manifest, err := rfm.BuildFeatures(cleaned, reference)
	if err != nil {
		return nil, err
	}

	clusterCfg := cfg.Cluster
	if cfg.Progress != nil {
		clusterCfg.Progress = func(done, total int) { cfg.Progress("sweep", done, total) }
	}
	clustered, err := cluster.Run(features, manifest, clusterCfg)
	if err != nil {
		return nil, err
	}

	if err := clv.Score(features, cfg.Weights); err != nil {
		return nil, err
	}

	profiles := cluster.Profiles(features, clustered.K)

	miningCfg := cfg.Mining
	if cfg.Progress != nil {
		miningCfg.Progress = func(done, total int) { cfg.Progress("mining", done, total) }
	}
	mined, err := mining.Mine(ctx, cleaned, features, clustered.K, miningCfg)
	if err != nil {
		return nil, err
	}

	strategies := strategy.Synthesize(profiles, mined.Rules)

	report := model.RunReport{
		RunID:           runID,
		StartedAt:       started,
		ReferenceDate:   reference,
		Stages:          summary.Stages,
		Customers:       summary.Customers,
		Transactions:    summary.Transactions,
		Categories:      summary.Categories,
		TotalRevenue:    summary.TotalRevenue,
		Binning:         manifest.Binning,
		SelectedK:       clustered.K,
		AlternateK:      clustered.Sweep.AlternateK,
		RuleCount:       len(mined.Rules),
		SkippedClusters: mined.Skipped,
	}

	slog.Info("pipeline finished",
		"run_id", runID,
		"customers", summary.Customers,
		"k", clustered.K,
		"rules", len(mined.Rules),
		"elapsed", time.Since(started))

	return &Result{
		Report:       report,
		Features:     features,
		Manifest:     clustered.Selected,
		Profiles:     profiles,
		Rules:        mined.Rules,
		Cooccurrence: mined.Cooccurrence,
		Strategies:   strategies,
		Sweep:        clustered.Sweep,
		Transactions: cleaned,
		K:            clustered.K,
	}, nil
}
