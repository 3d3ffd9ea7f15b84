package rfm

import "github.com/segmint/segmint/internal/model"

// assignSegment classifies a customer from their RFM scores. The table
// is total and ordered first-match, so every customer gets exactly one
// label.
func assignSegment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return model.SegmentChampions
	case f >= 4 && r >= 3 && m >= 3:
		return model.SegmentLoyalCustomers
	case r >= 4 && f >= 2 && m >= 2:
		return model.SegmentPotentialLoyalists
	case f >= 4 && m >= 4 && r <= 2:
		return model.SegmentCantLose
	case f >= 3 && r <= 2:
		return model.SegmentAtRisk
	case r <= 2 && f <= 2 && m <= 2:
		return model.SegmentHibernating
	default:
		return model.SegmentNeedAttention
	}
}
