package report

import (
	"fmt"
	"strings"

	"github.com/segmint/segmint/internal/model"
	"github.com/segmint/segmint/internal/pipeline"
)

// Render formats a full run summary for the terminal.
func Render(result *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Customer Segmentation & Market-Basket Analysis"))
	b.WriteString("\n")
	b.WriteString(renderOverview(result))
	b.WriteString("\n")
	b.WriteString(renderClusters(result))
	b.WriteString("\n")
	b.WriteString(renderRules(result))
	b.WriteString("\n")
	b.WriteString(renderStrategies(result))

	return b.String()
}

func renderOverview(result *pipeline.Result) string {
	r := result.Report
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Overview"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Run:"), r.RunID)
	fmt.Fprintf(&b, "%s %d customers, %d transactions, %d categories\n",
		labelStyle.Render("Data:"), r.Customers, r.Transactions, r.Categories)
	fmt.Fprintf(&b, "%s $%.2f\n", labelStyle.Render("Revenue:"), r.TotalRevenue)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Reference date:"), r.ReferenceDate.Format("2006-01-02"))

	for _, stage := range r.Stages {
		if stage.Dropped > 0 {
			fmt.Fprintf(&b, "%s %s dropped %d rows (%d -> %d)\n",
				labelStyle.Render("Cleaning:"), stage.Stage, stage.Dropped, stage.Before, stage.After)
		}
	}

	fmt.Fprintf(&b, "%s k=%d", labelStyle.Render("Clusters:"), r.SelectedK)
	if r.AlternateK != 0 {
		fmt.Fprintf(&b, " %s", warnStyle.Render(fmt.Sprintf("(Davies-Bouldin prefers k=%d)", r.AlternateK)))
	}
	b.WriteString("\n")

	for metric, policy := range r.Binning {
		if policy == model.BinningWidth {
			fmt.Fprintf(&b, "%s\n", warnStyle.Render(
				fmt.Sprintf("note: %s scored with equal-width fallback binning", metric)))
		}
	}
	return b.String()
}

func renderClusters(result *pipeline.Result) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Cluster Profiles"))
	b.WriteString("\n")
	for _, p := range result.Profiles {
		var box strings.Builder
		fmt.Fprintf(&box, "Cluster %d: %s\n", p.ID, p.Archetype)
		fmt.Fprintf(&box, "%d customers (%.1f%%) - %s\n", p.Count, p.Percent, p.Description)
		fmt.Fprintf(&box, "R=%.1f F=%.1f M=%.1f | recency %.0fd, %.1f purchases, $%.0f\n",
			p.MeanRScore, p.MeanFScore, p.MeanMScore,
			p.Recency.Mean, p.Frequency.Mean, p.Monetary.Mean)
		for i, c := range p.TopCategories {
			fmt.Fprintf(&box, "%d. %s (%.1f%%)", i+1, model.HumanizeCategory(c.Category), c.Share*100)
			if i < len(p.TopCategories)-1 {
				box.WriteString("  ")
			}
		}
		b.WriteString(boxStyle.Render(box.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRules(result *pipeline.Result) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Association Rules"))
	b.WriteString("\n")

	if len(result.Rules) == 0 {
		b.WriteString(warnStyle.Render("No rules met the thresholds in any cluster."))
		b.WriteString("\n")
		if len(result.Cooccurrence) > 0 {
			b.WriteString(labelStyle.Render("Co-occurrence diagnostic (pair counts, not rules):"))
			b.WriteString("\n")
			limit := len(result.Cooccurrence)
			if limit > 10 {
				limit = 10
			}
			for _, p := range result.Cooccurrence[:limit] {
				fmt.Fprintf(&b, "  %s + %s: %dx (%.1f%%)\n",
					model.HumanizeCategory(p.CategoryA), model.HumanizeCategory(p.CategoryB), p.Count, p.Percent)
			}
		}
		return b.String()
	}

	perCluster := make(map[int]int)
	for _, r := range result.Rules {
		if perCluster[r.Cluster] >= 3 {
			continue
		}
		perCluster[r.Cluster]++
		fmt.Fprintf(&b, "  [%d] %s -> %s  support %.2f%%, confidence %.1f%%, lift %.2f (%s)\n",
			r.Cluster,
			model.HumanizeCategories(r.Antecedent), model.HumanizeCategories(r.Consequent),
			r.Support*100, r.Confidence*100, r.Lift, r.Interpretation)
	}

	for _, skipped := range result.Report.SkippedClusters {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(
			fmt.Sprintf("  cluster %d skipped: %s", skipped.Cluster, skipped.Reason)))
	}
	return b.String()
}

func renderStrategies(result *pipeline.Result) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Promotion Strategies"))
	b.WriteString("\n")
	for _, s := range result.Strategies {
		fmt.Fprintf(&b, "  [%d] %s: %s\n", s.Cluster, s.Type, s.Description)
		fmt.Fprintf(&b, "      %s\n", labelStyle.Render(s.Rationale))
	}
	return b.String()
}
