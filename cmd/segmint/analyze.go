package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/segmint/segmint/internal/clv"
	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/ingest"
	"github.com/segmint/segmint/internal/pipeline"
	"github.com/segmint/segmint/internal/report"
	"github.com/segmint/segmint/internal/storage"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full segmentation and basket-analysis pipeline",
		Long: `Loads a transaction table (CSV or XLSX), cleans it, scores customers,
clusters them, and mines per-cluster association rules. Results are
printed as a styled summary and optionally exported to CSV files and a
SQLite database.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("input", "i", "", "input file (CSV or XLSX, required)")
	cmd.Flags().String("clusters", "auto", "cluster count (2-10) or \"auto\" for the validity-index sweep")
	cmd.Flags().Int("k-min", 2, "sweep lower bound when clusters=auto")
	cmd.Flags().Int("k-max", 10, "sweep upper bound when clusters=auto")
	cmd.Flags().Int("category-features", 5, "top-variance category proportion features used in clustering (0 disables)")
	cmd.Flags().Float64("min-support", 0.01, "Apriori minimum support (0-1)")
	cmd.Flags().Float64("min-confidence", 0.2, "minimum rule confidence (0-1)")
	cmd.Flags().Float64("min-lift", 1.0, "minimum rule lift")
	cmd.Flags().Int("min-baskets", 5, "minimum multi-item baskets a cluster needs to be mined")
	cmd.Flags().String("clv-weights", "0.25,0.25,0.25,0.25", "CLV weights for Length,Recency,Frequency,Monetary")
	cmd.Flags().String("reference-date", "", "recency reference date (YYYY-MM-DD, default: day after latest transaction)")
	cmd.Flags().StringP("output-dir", "o", "", "directory for CSV exports (skipped when empty)")
	cmd.Flags().String("export-db", "", "SQLite database to append this run's results to")

	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	records, err := ingest.ReadFile(input)
	if err != nil {
		return common.NewUserError("Could not load the input file", err)
	}

	bar := newStageBar(cmd)
	cfg.Progress = bar.update

	result, err := pipeline.Run(cmd.Context(), records, cfg)
	bar.finish()
	if err != nil {
		return common.NewUserError("Analysis failed", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Render(result))

	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		if err := exportCSVs(dir, result); err != nil {
			return common.NewUserError("Could not write CSV exports", err)
		}
		slog.Info("csv exports written", "dir", dir)
	}

	if dbPath, _ := cmd.Flags().GetString("export-db"); dbPath != "" {
		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			return common.NewUserError("Could not open the results database", err)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("failed to close results database", "error", cerr)
			}
		}()
		if err := store.SaveRun(cmd.Context(), result); err != nil {
			return common.NewUserError("Could not save the run", err)
		}
		slog.Info("run saved", "db", dbPath, "run_id", result.Report.RunID)
	}

	return nil
}

func buildConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	clusters, _ := cmd.Flags().GetString("clusters")
	if clusters != "auto" && clusters != "" {
		k, err := strconv.Atoi(clusters)
		if err != nil {
			return cfg, &common.ConfigError{Field: "clusters", Reason: "must be an integer or \"auto\""}
		}
		cfg.Cluster.K = k
	}
	cfg.Cluster.KMin, _ = cmd.Flags().GetInt("k-min")
	cfg.Cluster.KMax, _ = cmd.Flags().GetInt("k-max")
	cfg.Cluster.TopCategoryFeatures, _ = cmd.Flags().GetInt("category-features")

	cfg.Mining.MinSupport, _ = cmd.Flags().GetFloat64("min-support")
	cfg.Mining.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
	cfg.Mining.MinLift, _ = cmd.Flags().GetFloat64("min-lift")
	cfg.Mining.MinBaskets, _ = cmd.Flags().GetInt("min-baskets")

	weights, _ := cmd.Flags().GetString("clv-weights")
	w, err := parseWeights(weights)
	if err != nil {
		return cfg, err
	}
	cfg.Weights = w

	if ref, _ := cmd.Flags().GetString("reference-date"); ref != "" {
		d, err := time.Parse("2006-01-02", ref)
		if err != nil {
			return cfg, &common.ConfigError{Field: "reference-date", Reason: "must be YYYY-MM-DD"}
		}
		cfg.ReferenceDate = &d
	}

	return cfg, cfg.Validate()
}

func parseWeights(s string) (clv.Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return clv.Weights{}, &common.ConfigError{Field: "clv-weights", Reason: "need exactly 4 comma-separated values"}
	}
	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return clv.Weights{}, &common.ConfigError{Field: "clv-weights", Reason: fmt.Sprintf("%q is not a number", p)}
		}
		values[i] = v
	}
	return clv.Weights{Length: values[0], Recency: values[1], Frequency: values[2], Monetary: values[3]}, nil
}

func exportCSVs(dir string, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writers := []struct {
		write func(f *os.File) error
		name  string
	}{
		{name: "customer_features.csv", write: func(f *os.File) error { return report.WriteFeatureTable(f, result) }},
		{name: "cluster_profiles.csv", write: func(f *os.File) error { return report.WriteProfiles(f, result.Profiles) }},
		{name: "association_rules.csv", write: func(f *os.File) error { return report.WriteRules(f, result.Rules) }},
		{name: "strategies.csv", write: func(f *os.File) error { return report.WriteStrategies(f, result.Strategies) }},
	}

	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name)) // #nosec G304 -- user-supplied output dir
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", w.name, err)
		}
		if err := w.write(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write %s: %w", w.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", w.name, err)
		}
	}
	return nil
}

// stageBar drives one progress bar per pipeline stage.
type stageBar struct {
	bar   *progressbar.ProgressBar
	cmd   *cobra.Command
	stage string
}

func newStageBar(cmd *cobra.Command) *stageBar {
	return &stageBar{cmd: cmd}
}

func (s *stageBar) update(stage string, done, total int) {
	if s.stage != stage {
		s.finish()
		s.stage = stage
		description := "Selecting cluster count..."
		if stage == "mining" {
			description = "Mining association rules..."
		}
		s.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(s.cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(description),
		)
	}
	_ = s.bar.Set(done)
}

func (s *stageBar) finish() {
	if s.bar != nil {
		_ = s.bar.Finish()
		fmt.Fprintln(s.cmd.ErrOrStderr())
		s.bar = nil
	}
}
