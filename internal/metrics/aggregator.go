package metrics

import (
	"fmt"
	"math"
	"sort"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/models"
)

// Aggregator computes collection-level KPIs over a validated ticket set.
// It owns its working slices, never mutates its input, and every method is
// pure and idempotent. All methods return zero-valued results for an empty
// collection instead of failing.
type Aggregator struct {
	tickets     []*models.TicketMetrics
	categories  []string
	hoursPerDay int
	daysPerWeek int

	detectionTimes  []float64
	resolutionTimes []float64
	totalTimes      []float64

	detectionWorking  []float64
	resolutionWorking []float64
}

// NewAggregator builds an aggregator over validated records. The working-
// hours series are computed once up front, mirroring the per-ticket
// conversion the derivation side defines.
func NewAggregator(tickets []*models.TicketMetrics, analysis *common.AnalysisConfig) *Aggregator {
	bh := analysis.BusinessHours

	a := &Aggregator{
		tickets:           tickets,
		categories:        analysis.ResolutionCategories(),
		hoursPerDay:       bh.HoursPerDay,
		daysPerWeek:       bh.DaysPerWeek,
		detectionTimes:    make([]float64, 0, len(tickets)),
		resolutionTimes:   make([]float64, 0, len(tickets)),
		totalTimes:        make([]float64, 0, len(tickets)),
		detectionWorking:  make([]float64, 0, len(tickets)),
		resolutionWorking: make([]float64, 0, len(tickets)),
	}

	for _, ticket := range tickets {
		a.detectionTimes = append(a.detectionTimes, ticket.DetectionTimeHours)
		a.resolutionTimes = append(a.resolutionTimes, ticket.ResolutionTimeHours)
		a.totalTimes = append(a.totalTimes, ticket.TotalTimeHours)
		a.detectionWorking = append(a.detectionWorking, ToWorkingHours(ticket.DetectionTimeHours, bh.HoursPerDay, bh.DaysPerWeek))
		a.resolutionWorking = append(a.resolutionWorking, ToWorkingHours(ticket.ResolutionTimeHours, bh.HoursPerDay, bh.DaysPerWeek))
	}

	return a
}

// Count returns the number of tickets in the working collection
func (a *Aggregator) Count() int {
	return len(a.tickets)
}

// MTTR returns the mean time to resolution in calendar hours, working
// hours, and the day conversions of each
func (a *Aggregator) MTTR() models.MeanTimeMetrics {
	return a.meanTime(a.resolutionTimes, a.resolutionWorking)
}

// MTD returns the mean time to detection in the same unit variants
func (a *Aggregator) MTD() models.MeanTimeMetrics {
	return a.meanTime(a.detectionTimes, a.detectionWorking)
}

func (a *Aggregator) meanTime(calendar, working []float64) models.MeanTimeMetrics {
	if len(calendar) == 0 {
		return models.MeanTimeMetrics{}
	}

	hours := mean(calendar)
	workingHours := mean(working)

	m := models.MeanTimeMetrics{
		Hours:        hours,
		WorkingHours: workingHours,
		Days:         hours / 24,
	}
	if a.hoursPerDay > 0 {
		m.WorkingDays = workingHours / float64(a.hoursPerDay)
	}
	return m
}

// ResolutionBreakdown counts tickets per resolution category. Every
// configured category appears in the result even with a zero count, so the
// key set is stable across runs.
func (a *Aggregator) ResolutionBreakdown() map[string]int {
	breakdown := make(map[string]int, len(a.categories))
	for _, category := range a.categories {
		breakdown[category] = 0
	}
	for _, ticket := range a.tickets {
		breakdown[ticket.ResolutionCategory]++
	}
	return breakdown
}

// TimeDistributions returns copies of the raw time series
func (a *Aggregator) TimeDistributions() models.TimeDistributions {
	return models.TimeDistributions{
		DetectionTimes:  append([]float64(nil), a.detectionTimes...),
		ResolutionTimes: append([]float64(nil), a.resolutionTimes...),
		TotalTimes:      append([]float64(nil), a.totalTimes...),
	}
}

// Percentiles computes the 25/50/75/90/95/99 cuts for each time series
// using linear interpolation between order statistics
func (a *Aggregator) Percentiles() models.PercentileReport {
	return models.PercentileReport{
		DetectionTime:  percentileSet(a.detectionTimes),
		ResolutionTime: percentileSet(a.resolutionTimes),
		TotalTime:      percentileSet(a.totalTimes),
	}
}

func percentileSet(values []float64) models.PercentileSet {
	return models.PercentileSet{
		P25: percentile(values, 0.25),
		P50: percentile(values, 0.50),
		P75: percentile(values, 0.75),
		P90: percentile(values, 0.90),
		P95: percentile(values, 0.95),
		P99: percentile(values, 0.99),
	}
}

// WeeklyTrends buckets tickets by the ISO week of their creation instant
// and returns per-week counts and mean times, ordered by week. Weeks with
// no tickets are not synthesized. Tickets whose creation timestamp failed
// to parse carry a zero instant and are skipped.
func (a *Aggregator) WeeklyTrends() []models.WeeklyTrend {
	type bucket struct {
		year, week int
		count      int
		detection  float64
		resolution float64
		total      float64
	}

	buckets := make(map[string]*bucket)
	for _, ticket := range a.tickets {
		if ticket.CreatedAt.IsZero() {
			continue
		}
		year, week := ticket.CreatedAt.UTC().ISOWeek()
		label := fmt.Sprintf("%d-W%02d", year, week)

		b, ok := buckets[label]
		if !ok {
			b = &bucket{year: year, week: week}
			buckets[label] = b
		}
		b.count++
		b.detection += ticket.DetectionTimeHours
		b.resolution += ticket.ResolutionTimeHours
		b.total += ticket.TotalTimeHours
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := buckets[labels[i]], buckets[labels[j]]
		if a.year != b.year {
			return a.year < b.year
		}
		return a.week < b.week
	})

	trends := make([]models.WeeklyTrend, 0, len(labels))
	for _, label := range labels {
		b := buckets[label]
		n := float64(b.count)
		trends = append(trends, models.WeeklyTrend{
			Week:              label,
			TicketCount:       b.count,
			AvgDetectionTime:  b.detection / n,
			AvgResolutionTime: b.resolution / n,
			AvgTotalTime:      b.total / n,
		})
	}
	return trends
}

// SummaryStatistics returns descriptive statistics for the detection and
// resolution series. Standard deviation is the sample (n-1) form; fewer
// than two tickets yield 0.
func (a *Aggregator) SummaryStatistics() models.SummaryStatistics {
	if len(a.tickets) == 0 {
		return models.SummaryStatistics{}
	}

	return models.SummaryStatistics{
		TotalTickets:         len(a.tickets),
		AvgDetectionTime:     mean(a.detectionTimes),
		AvgResolutionTime:    mean(a.resolutionTimes),
		MedianDetectionTime:  median(a.detectionTimes),
		MedianResolutionTime: median(a.resolutionTimes),
		StdDetectionTime:     sampleStdDev(a.detectionTimes),
		StdResolutionTime:    sampleStdDev(a.resolutionTimes),
		MinDetectionTime:     minValue(a.detectionTimes),
		MaxDetectionTime:     maxValue(a.detectionTimes),
		MinResolutionTime:    minValue(a.resolutionTimes),
		MaxResolutionTime:    maxValue(a.resolutionTimes),
	}
}

// Outliers identifies tickets outside the IQR fences of the detection and
// resolution series: Q1 - threshold*IQR below, Q3 + threshold*IQR above.
func (a *Aggregator) Outliers(threshold float64) models.OutlierReport {
	return models.OutlierReport{
		DetectionOutliers:  a.iqrOutliers(a.detectionTimes, threshold),
		ResolutionOutliers: a.iqrOutliers(a.resolutionTimes, threshold),
	}
}

func (a *Aggregator) iqrOutliers(values []float64, threshold float64) []models.Outlier {
	if len(values) == 0 {
		return nil
	}

	q1 := percentile(values, 0.25)
	q3 := percentile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - threshold*iqr
	upper := q3 + threshold*iqr

	var outliers []models.Outlier
	for i, ticket := range a.tickets {
		v := values[i]
		if v < lower || v > upper {
			outliers = append(outliers, models.Outlier{
				Key:      ticket.Key,
				Time:     v,
				Summary:  ticket.Summary,
				Status:   ticket.Status,
				Priority: ticket.Priority,
			})
		}
	}
	return outliers
}

// ZScoreOutliers is the alternate outlier mode used by the visualization-
// facing report: tickets whose value sits more than threshold sample
// standard deviations from the mean. A degenerate (zero-variance) series
// has no outliers.
func (a *Aggregator) ZScoreOutliers(threshold float64) models.OutlierReport {
	return models.OutlierReport{
		DetectionOutliers:  a.zScoreOutliers(a.detectionTimes, threshold),
		ResolutionOutliers: a.zScoreOutliers(a.resolutionTimes, threshold),
	}
}

func (a *Aggregator) zScoreOutliers(values []float64, threshold float64) []models.Outlier {
	if len(values) < 2 {
		return nil
	}

	m := mean(values)
	std := sampleStdDev(values)
	if std == 0 {
		return nil
	}

	var outliers []models.Outlier
	for i, ticket := range a.tickets {
		z := math.Abs(values[i]-m) / std
		if z > threshold {
			outliers = append(outliers, models.Outlier{
				Key:      ticket.Key,
				Time:     values[i],
				Summary:  ticket.Summary,
				Status:   ticket.Status,
				Priority: ticket.Priority,
				ZScore:   z,
			})
		}
	}
	return outliers
}
