// Package rfm builds the per-customer feature table: raw LRFM metrics,
// quintile scores, segment labels and category-purchase proportions.
package rfm

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// proportionTolerance is the allowed deviation of a customer's category
// proportions from summing to exactly 1.
const proportionTolerance = 0.01

// BuildFeatures aggregates cleaned transactions into one feature row per
// customer and reports the feature manifest consumed by clustering.
//
// Invariant violations (negative recency, zero frequency, non-positive
// monetary) indicate an upstream cleaning bug and fail the run with a
// DataQualityError.
func BuildFeatures(txns []model.Transaction, reference time.Time) ([]*model.CustomerFeatures, model.FeatureManifest, error) {
	if len(txns) == 0 {
		return nil, model.FeatureManifest{}, common.NewDataQualityError("no transactions to aggregate")
	}

	features, err := aggregate(txns, reference)
	if err != nil {
		return nil, model.FeatureManifest{}, err
	}

	manifest := model.FeatureManifest{
		ScoreColumns: []string{"r_score", "f_score", "m_score"},
		Binning:      make(map[string]model.BinningPolicy, 3),
	}

	score(features, &manifest)

	categories, err := attachProportions(features, txns)
	if err != nil {
		return nil, model.FeatureManifest{}, err
	}
	for _, c := range categories {
		manifest.ProportionColumns = append(manifest.ProportionColumns, "prop_"+c)
	}

	slog.Info("feature table assembled",
		"customers", len(features),
		"categories", len(categories),
		"recency_binning", manifest.Binning["recency"],
		"frequency_binning", manifest.Binning["frequency"],
		"monetary_binning", manifest.Binning["monetary"])

	return features, manifest, nil
}

// aggregate computes raw L/R/F/M per customer, ordered by customer ID.
func aggregate(txns []model.Transaction, reference time.Time) ([]*model.CustomerFeatures, error) {
	type accum struct {
		first, last  time.Time
		transactions map[int64]bool
		monetary     float64
		tenureMonths float64
	}

	byCustomer := make(map[int64]*accum)
	for _, t := range txns {
		a, ok := byCustomer[t.CustomerID]
		if !ok {
			a = &accum{first: t.Date, last: t.Date, transactions: make(map[int64]bool)}
			byCustomer[t.CustomerID] = a
		}
		if t.Date.Before(a.first) {
			a.first = t.Date
		}
		if t.Date.After(a.last) {
			a.last = t.Date
		}
		a.transactions[t.TransactionID] = true
		a.monetary += t.TotalPrice
		if t.TenureMonths > a.tenureMonths {
			a.tenureMonths = t.TenureMonths
		}
	}

	ids := make([]int64, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	features := make([]*model.CustomerFeatures, 0, len(ids))
	for _, id := range ids {
		a := byCustomer[id]
		recency := wholeDays(reference.Sub(a.last))

		// Tenure from the source wins; otherwise length is the span of
		// observed activity in days.
		length := a.tenureMonths
		if length == 0 {
			length = float64(wholeDays(a.last.Sub(a.first)))
		}

		f := &model.CustomerFeatures{
			CustomerID: id,
			Recency:    recency,
			Frequency:  len(a.transactions),
			Monetary:   a.monetary,
			Length:     length,
			Cluster:    -1,
		}

		switch {
		case f.Recency < 0:
			return nil, common.NewDataQualityError(
				fmt.Sprintf("customer %d: negative recency %d (reference date precedes last transaction)", id, f.Recency))
		case f.Frequency <= 0:
			return nil, common.NewDataQualityError(fmt.Sprintf("customer %d: zero frequency", id))
		case f.Monetary <= 0:
			return nil, common.NewDataQualityError(fmt.Sprintf("customer %d: non-positive monetary %.2f", id, f.Monetary))
		}

		features = append(features, f)
	}
	return features, nil
}

// score fills the quintile scores, combined score string and segment.
func score(features []*model.CustomerFeatures, manifest *model.FeatureManifest) {
	n := len(features)
	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, f := range features {
		recency[i] = float64(f.Recency)
		frequency[i] = float64(f.Frequency)
		monetary[i] = f.Monetary
	}

	rScores, rPolicy := quintileScores(recency, true)
	fScores, fPolicy := quintileScores(frequency, false)
	mScores, mPolicy := quintileScores(monetary, false)

	manifest.Binning["recency"] = rPolicy
	manifest.Binning["frequency"] = fPolicy
	manifest.Binning["monetary"] = mPolicy

	for i, f := range features {
		f.RScore = rScores[i]
		f.FScore = fScores[i]
		f.MScore = mScores[i]
		f.RFMScore = fmt.Sprintf("%d%d%d", f.RScore, f.FScore, f.MScore)
		f.RFMTotal = f.RScore + f.FScore + f.MScore
		f.Segment = assignSegment(f.RScore, f.FScore, f.MScore)
	}
}

// attachProportions computes each customer's category purchase shares
// (by quantity) and left-joins them onto the feature rows. Returns the
// sorted category list.
func attachProportions(features []*model.CustomerFeatures, txns []model.Transaction) ([]string, error) {
	quantities := make(map[int64]map[string]float64)
	totals := make(map[int64]float64)
	categorySet := make(map[string]bool)

	for _, t := range txns {
		byCat, ok := quantities[t.CustomerID]
		if !ok {
			byCat = make(map[string]float64)
			quantities[t.CustomerID] = byCat
		}
		byCat[t.Category] += t.Quantity
		totals[t.CustomerID] += t.Quantity
		categorySet[t.Category] = true
	}

	categories := make([]string, 0, len(categorySet))
	for c := range categorySet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, f := range features {
		props := make(map[string]float64, len(categories))
		total := totals[f.CustomerID]
		sum := 0.0
		for _, c := range categories {
			p := 0.0
			if total > 0 {
				p = quantities[f.CustomerID][c] / total
			}
			props[c] = p
			sum += p
		}
		if math.Abs(sum-1.0) > proportionTolerance {
			return nil, common.NewDataQualityError(
				fmt.Sprintf("customer %d: category proportions sum to %.4f", f.CustomerID, sum))
		}
		f.Proportions = props
	}

	return categories, nil
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
