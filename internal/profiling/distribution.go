package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DistributionAnalyzer handles per-column summary statistics
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeColumn computes the summary of one column
func (da *DistributionAnalyzer) AnalyzeColumn(name string, data []float64) (ColumnProfile, error) {
	profile := ColumnProfile{Name: name, Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}

	stdDev := 0.0
	if len(data) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return profile, err
		}
	}

	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	// Quartiles for IQR-based outlier detection
	q25, q75 := median, median
	if len(data) > 1 {
		quartiles, err := stats.Quartile(data)
		if err != nil {
			return profile, err
		}
		q25, q75 = quartiles.Q1, quartiles.Q3
	}

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.Q25 = q25
	profile.Q75 = q75
	profile.Skewness = calculateSkewness(data, mean, stdDev)
	profile.Outliers = detectOutliers(data, q25, q75)

	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
