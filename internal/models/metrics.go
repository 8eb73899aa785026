package models

import "time"

// TicketMetrics is the per-ticket record produced by the deriver. Times are
// calendar hours; working-hour variants are added by the aggregation layer.
type TicketMetrics struct {
	Key                string   `json:"key"`
	Summary            string   `json:"summary"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority"`
	Labels             []string `json:"labels,omitempty"`
	Components         []string `json:"components,omitempty"`

	TotalTimeHours      float64 `json:"total_time_hours"`
	DetectionTimeHours  float64 `json:"detection_time_hours"`
	ResolutionTimeHours float64 `json:"resolution_time_hours"`

	Severity           string `json:"severity"`
	AlertCategory      string `json:"alert_category"`
	ResolutionCategory string `json:"resolution_category"`
	SLABreach          bool   `json:"sla_breach"`
	EscalationCount    int    `json:"escalation_count"`

	// CreatedAt is the parsed, UTC-normalized creation instant used for
	// trend bucketing. Zero when the creation timestamp failed to parse.
	CreatedAt time.Time `json:"created_at"`
}

// MeanTimeMetrics holds a mean elapsed-time KPI in its four unit variants
type MeanTimeMetrics struct {
	Hours        float64 `json:"hours"`
	WorkingHours float64 `json:"working_hours"`
	Days         float64 `json:"days"`
	WorkingDays  float64 `json:"working_days"`
}

// PercentileSet holds the standard percentile cuts for one time series
type PercentileSet struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// PercentileReport groups percentile tables per time series
type PercentileReport struct {
	DetectionTime  PercentileSet `json:"detection_time"`
	ResolutionTime PercentileSet `json:"resolution_time"`
	TotalTime      PercentileSet `json:"total_time"`
}

// TimeDistributions exposes the raw time series for chart rendering
type TimeDistributions struct {
	DetectionTimes  []float64 `json:"detection_times"`
	ResolutionTimes []float64 `json:"resolution_times"`
	TotalTimes      []float64 `json:"total_times"`
}

// WeeklyTrend summarizes one ISO week of ticket activity. Week labels are
// "2006-W02" so ordering stays total across year boundaries.
type WeeklyTrend struct {
	Week              string  `json:"week"`
	TicketCount       int     `json:"ticket_count"`
	AvgDetectionTime  float64 `json:"avg_detection_time"`
	AvgResolutionTime float64 `json:"avg_resolution_time"`
	AvgTotalTime      float64 `json:"avg_total_time"`
}

// SummaryStatistics holds descriptive statistics over the detection and
// resolution time series. Standard deviations are sample (n-1) values.
type SummaryStatistics struct {
	TotalTickets         int     `json:"total_tickets"`
	AvgDetectionTime     float64 `json:"avg_detection_time"`
	AvgResolutionTime    float64 `json:"avg_resolution_time"`
	MedianDetectionTime  float64 `json:"median_detection_time"`
	MedianResolutionTime float64 `json:"median_resolution_time"`
	StdDetectionTime     float64 `json:"std_detection_time"`
	StdResolutionTime    float64 `json:"std_resolution_time"`
	MinDetectionTime     float64 `json:"min_detection_time"`
	MaxDetectionTime     float64 `json:"max_detection_time"`
	MinResolutionTime    float64 `json:"min_resolution_time"`
	MaxResolutionTime    float64 `json:"max_resolution_time"`
}

// Outlier identifies a ticket outside the expected time distribution
type Outlier struct {
	Key      string  `json:"key"`
	Time     float64 `json:"time"`
	Summary  string  `json:"summary"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	ZScore   float64 `json:"z_score,omitempty"`
}

// OutlierReport groups outliers per time series
type OutlierReport struct {
	DetectionOutliers  []Outlier `json:"detection_outliers"`
	ResolutionOutliers []Outlier `json:"resolution_outliers"`
}

// ReportData is the assembled structure consumed by the report renderers
// and the web interface
type ReportData struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ProjectKey  string    `json:"project_key"`

	AnalysisType        string   `json:"analysis_type"`
	AnalysisName        string   `json:"analysis_name"`
	AnalysisDescription string   `json:"analysis_description"`
	ExcludedStatuses    []string `json:"excluded_statuses,omitempty"`

	TotalTickets    int `json:"total_tickets"`
	OriginalTickets int `json:"original_tickets"`
	ClosedTickets   int `json:"closed_tickets"`
	OpenTickets     int `json:"open_tickets"`
	DiscardedCount  int `json:"discarded_count"`
	SLABreaches     int `json:"sla_breaches"`

	MTTR                MeanTimeMetrics    `json:"mttr"`
	MTD                 MeanTimeMetrics    `json:"mtd"`
	ResolutionBreakdown map[string]int     `json:"resolution_breakdown"`
	Percentiles         PercentileReport   `json:"percentiles"`
	TimeDistributions   TimeDistributions  `json:"time_distributions"`
	WeeklyTrends        []WeeklyTrend      `json:"weekly_trends"`
	SummaryStatistics   SummaryStatistics  `json:"summary_statistics"`
	Outliers            OutlierReport      `json:"outliers"`
	ZScoreOutliers      OutlierReport      `json:"z_score_outliers"`

	// RawData carries a capped sample of the per-ticket records for the
	// raw-data report sections
	RawData []*TicketMetrics `json:"raw_data"`
}
