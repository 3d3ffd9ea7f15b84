package cluster

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/segmint/segmint/internal/model"
)

// Profiles derives per-cluster aggregate statistics, dominant categories
// and archetype labels from the assigned feature table. Profiles are
// read-only derivations; recompute them whenever assignments change.
func Profiles(features []*model.CustomerFeatures, k int) []model.ClusterProfile {
	total := len(features)
	profiles := make([]model.ClusterProfile, 0, k)

	for c := 0; c < k; c++ {
		var members []*model.CustomerFeatures
		for _, f := range features {
			if f.Cluster == c {
				members = append(members, f)
			}
		}
		if len(members) == 0 {
			continue
		}

		p := model.ClusterProfile{
			ID:      c,
			Count:   len(members),
			Percent: float64(len(members)) / float64(total) * 100,
		}

		recency := make([]float64, len(members))
		frequency := make([]float64, len(members))
		monetary := make([]float64, len(members))
		rScores := make([]float64, len(members))
		fScores := make([]float64, len(members))
		mScores := make([]float64, len(members))
		for i, m := range members {
			recency[i] = float64(m.Recency)
			frequency[i] = float64(m.Frequency)
			monetary[i] = m.Monetary
			rScores[i] = float64(m.RScore)
			fScores[i] = float64(m.FScore)
			mScores[i] = float64(m.MScore)
		}

		p.Recency = describe(recency)
		p.Frequency = describe(frequency)
		p.Monetary = describe(monetary)
		p.MeanRScore = stat.Mean(rScores, nil)
		p.MeanFScore = stat.Mean(fScores, nil)
		p.MeanMScore = stat.Mean(mScores, nil)
		p.TopCategories = topCategories(members, 3)
		p.Archetype, p.Description = archetype(p.MeanRScore, p.MeanFScore, p.MeanMScore)

		profiles = append(profiles, p)
	}
	return profiles
}

func describe(values []float64) model.Stats {
	s := model.Stats{
		Mean: stat.Mean(values, nil),
		Std:  stat.PopStdDev(values, nil),
		Min:  values[0],
		Max:  values[0],
	}
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// topCategories ranks categories by mean proportion across the cluster.
func topCategories(members []*model.CustomerFeatures, n int) []model.CategoryShare {
	sums := make(map[string]float64)
	for _, m := range members {
		for category, p := range m.Proportions {
			sums[category] += p
		}
	}

	shares := make([]model.CategoryShare, 0, len(sums))
	for category, sum := range sums {
		shares = append(shares, model.CategoryShare{
			Category: category,
			Share:    sum / float64(len(members)),
		})
	}
	sort.Slice(shares, func(a, b int) bool {
		if shares[a].Share != shares[b].Share {
			return shares[a].Share > shares[b].Share
		}
		return shares[a].Category < shares[b].Category
	})

	if n > len(shares) {
		n = len(shares)
	}
	return shares[:n]
}

// archetype classifies a cluster from its mean RFM scores. The decision
// table is total and ordered first-match.
func archetype(r, f, m float64) (string, string) {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return model.ArchetypeChampions, "Recent, frequent, high-spend customers"
	case f >= 4 && r >= 3:
		return model.ArchetypeLoyalCustomers, "Committed customers with high purchase frequency"
	case r >= 4:
		return model.ArchetypePotentialLoyalists, "Recent customers with growth potential"
	case r <= 2 && f >= 3:
		return model.ArchetypeAtRisk, "Former regulars drifting away; re-engagement needed"
	case r <= 2 && f <= 2:
		return model.ArchetypeHibernating, "Customers inactive for a long period"
	default:
		return model.ArchetypeNeedAttention, "Mid-range customers needing targeted attention"
	}
}
