package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/segmint/segmint/internal/model"
	"github.com/segmint/segmint/internal/pipeline"
)

// WriteFeatureTable writes the customer feature table (with cluster and
// CLV columns) as CSV. Proportion columns follow the run's manifest
// order, so identical runs produce byte-identical output.
func WriteFeatureTable(w io.Writer, result *pipeline.Result) error {
	categories := make([]string, 0, len(result.Manifest.ProportionColumns))
	for _, col := range result.Manifest.ProportionColumns {
		categories = append(categories, strings.TrimPrefix(col, "prop_"))
	}

	writer := csv.NewWriter(w)
	header := []string{
		"customer_id", "length", "recency", "frequency", "monetary",
		"r_score", "f_score", "m_score", "rfm_score", "segment", "cluster", "clv",
	}
	for _, c := range categories {
		header = append(header, "prop_"+c)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, f := range result.Features {
		row := []string{
			strconv.FormatInt(f.CustomerID, 10),
			formatFloat(f.Length),
			strconv.Itoa(f.Recency),
			strconv.Itoa(f.Frequency),
			formatFloat(f.Monetary),
			strconv.Itoa(f.RScore),
			strconv.Itoa(f.FScore),
			strconv.Itoa(f.MScore),
			f.RFMScore,
			f.Segment,
			strconv.Itoa(f.Cluster),
			formatFloat(f.CLV),
		}
		for _, c := range categories {
			row = append(row, formatFloat(f.Proportions[c]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write customer %d: %w", f.CustomerID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteProfiles writes the cluster profile table as CSV.
func WriteProfiles(w io.Writer, profiles []model.ClusterProfile) error {
	writer := csv.NewWriter(w)
	header := []string{
		"cluster", "archetype", "customers", "percent",
		"recency_mean", "recency_std", "recency_min", "recency_max",
		"frequency_mean", "frequency_std", "frequency_min", "frequency_max",
		"monetary_mean", "monetary_std", "monetary_min", "monetary_max",
		"mean_r_score", "mean_f_score", "mean_m_score", "top_categories",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range profiles {
		tops := make([]string, len(p.TopCategories))
		for i, c := range p.TopCategories {
			tops[i] = fmt.Sprintf("%s (%.1f%%)", c.Category, c.Share*100)
		}
		row := []string{
			strconv.Itoa(p.ID), p.Archetype, strconv.Itoa(p.Count), formatFloat(p.Percent),
			formatFloat(p.Recency.Mean), formatFloat(p.Recency.Std), formatFloat(p.Recency.Min), formatFloat(p.Recency.Max),
			formatFloat(p.Frequency.Mean), formatFloat(p.Frequency.Std), formatFloat(p.Frequency.Min), formatFloat(p.Frequency.Max),
			formatFloat(p.Monetary.Mean), formatFloat(p.Monetary.Std), formatFloat(p.Monetary.Min), formatFloat(p.Monetary.Max),
			formatFloat(p.MeanRScore), formatFloat(p.MeanFScore), formatFloat(p.MeanMScore),
			strings.Join(tops, "; "),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write cluster %d: %w", p.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRules writes the combined association-rule table as CSV.
func WriteRules(w io.Writer, rules []model.AssociationRule) error {
	writer := csv.NewWriter(w)
	header := []string{"cluster", "antecedent", "consequent", "support", "confidence", "lift", "interpretation"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range rules {
		row := []string{
			strconv.Itoa(r.Cluster),
			strings.Join(r.Antecedent, ", "),
			strings.Join(r.Consequent, ", "),
			formatFloat(r.Support),
			formatFloat(r.Confidence),
			formatFloat(r.Lift),
			string(r.Interpretation),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write rule: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteStrategies writes the per-cluster strategy list as CSV.
func WriteStrategies(w io.Writer, strategies []model.Strategy) error {
	writer := csv.NewWriter(w)
	header := []string{"cluster", "type", "description", "rationale", "lift", "confidence"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range strategies {
		lift, confidence := "", ""
		if s.Lift != nil {
			lift = formatFloat(*s.Lift)
		}
		if s.Confidence != nil {
			confidence = formatFloat(*s.Confidence)
		}
		row := []string{
			strconv.Itoa(s.Cluster), string(s.Type), s.Description, s.Rationale, lift, confidence,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write strategy: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
