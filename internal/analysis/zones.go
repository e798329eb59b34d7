package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/croplens/api/internal/provider"
)

// NDVI thresholds separating the three health classes. A bucket whose mean
// exceeds healthyThreshold is healthy; above moderateThreshold it is
// moderate; anything else is stressed.
const (
	healthyThreshold  = 0.3
	moderateThreshold = 0.15
)

// DeriveHealthZones classifies histogram buckets into health classes and
// converts the accumulated counts to rounded percentages of the total
// sample count. Returns nil when the histogram is absent or holds no
// samples — the caller maps that to a null health_zones field and the
// no-data recommendation.
func DeriveHealthZones(hist *provider.Histogram) *HealthZones {
	if hist == nil {
		return nil
	}

	var healthy, moderate, stressed float64
	for i, mean := range hist.BucketMeans {
		if i >= len(hist.Counts) {
			break
		}
		count := hist.Counts[i]
		switch {
		case mean > healthyThreshold:
			healthy += count
		case mean > moderateThreshold:
			moderate += count
		default:
			stressed += count
		}
	}

	total, err := stats.Sum(hist.Counts)
	if err != nil || total == 0 {
		return nil
	}

	return &HealthZones{
		Healthy:  int(math.Round(healthy / total * 100)),
		Moderate: int(math.Round(moderate / total * 100)),
		Stressed: int(math.Round(stressed / total * 100)),
	}
}
