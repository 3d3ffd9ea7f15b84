// Package clv computes a customer-lifetime-value proxy from scaled LRFM
// features and a configurable weight vector.
package clv

import (
	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// Weights holds the non-negative importance of each LRFM component.
type Weights struct {
	Length    float64
	Recency   float64
	Frequency float64
	Monetary  float64
}

// Normalize validates the weights and scales them to sum to 1. An
// all-zero vector defaults to uniform weighting.
func (w Weights) Normalize() (Weights, error) {
	if w.Length < 0 || w.Recency < 0 || w.Frequency < 0 || w.Monetary < 0 {
		return Weights{}, &common.ConfigError{Field: "clv_weights", Reason: "weights must be non-negative"}
	}
	total := w.Length + w.Recency + w.Frequency + w.Monetary
	if total == 0 {
		return Weights{Length: 0.25, Recency: 0.25, Frequency: 0.25, Monetary: 0.25}, nil
	}
	return Weights{
		Length:    w.Length / total,
		Recency:   w.Recency / total,
		Frequency: w.Frequency / total,
		Monetary:  w.Monetary / total,
	}, nil
}

// Score computes the CLV proxy for every customer and stores it on the
// feature rows:
//
//	CLV = wL*L' + wR*(1/(1+R')) + wF*F' + wM*M'
//
// where primes are min-max scaled values in [0,1]. The reciprocal
// recency term rewards recent activity, so CLV is monotone decreasing
// in recency and increasing in the other three.
func Score(features []*model.CustomerFeatures, weights Weights) error {
	w, err := weights.Normalize()
	if err != nil {
		return err
	}
	if len(features) == 0 {
		return nil
	}

	length := minMax(features, func(f *model.CustomerFeatures) float64 { return f.Length })
	recency := minMax(features, func(f *model.CustomerFeatures) float64 { return float64(f.Recency) })
	frequency := minMax(features, func(f *model.CustomerFeatures) float64 { return float64(f.Frequency) })
	monetary := minMax(features, func(f *model.CustomerFeatures) float64 { return f.Monetary })

	for i, f := range features {
		f.CLV = w.Length*length[i] +
			w.Recency*(1/(1+recency[i])) +
			w.Frequency*frequency[i] +
			w.Monetary*monetary[i]
	}
	return nil
}

// minMax scales one feature across customers into [0,1]. A constant
// feature maps to zero.
func minMax(features []*model.CustomerFeatures, get func(*model.CustomerFeatures) float64) []float64 {
	lo, hi := get(features[0]), get(features[0])
	for _, f := range features {
		v := get(f)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(features))
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, f := range features {
		out[i] = (get(f) - lo) / span
	}
	return out
}
