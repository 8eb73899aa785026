package report

import (
	"strings"
	"time"

	"aktis-soc-metrics/internal/metrics"
	"aktis-soc-metrics/internal/models"

	"github.com/google/uuid"
)

// DefaultOutlierThreshold is the IQR/Z-score multiplier used when the
// caller does not choose one.
const DefaultOutlierThreshold = 2.0

// AssembleInput carries everything the assembler needs to shape one run's
// report data.
type AssembleInput struct {
	ProjectKey          string
	AnalysisType        string
	AnalysisName        string
	AnalysisDescription string
	ExcludedStatuses    []string

	OriginalTickets int
	Discarded       int

	Valid              []*models.TicketMetrics
	Aggregator         *metrics.Aggregator
	CompletionStatuses []string

	RawSample        int
	OutlierThreshold float64
}

// Assemble shapes the aggregation outputs plus the per-ticket records into
// the structure the renderers and the web interface consume. Each call
// produces a fresh report stamped with its own run id; nothing is carried
// over between runs.
func Assemble(in AssembleInput) *models.ReportData {
	threshold := in.OutlierThreshold
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	sample := in.RawSample
	if sample <= 0 {
		sample = 100
	}
	if sample > len(in.Valid) {
		sample = len(in.Valid)
	}

	closed := 0
	breaches := 0
	for _, record := range in.Valid {
		if isCompleted(record.Status, in.CompletionStatuses) {
			closed++
		}
		if record.SLABreach {
			breaches++
		}
	}

	return &models.ReportData{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		ProjectKey:  in.ProjectKey,

		AnalysisType:        in.AnalysisType,
		AnalysisName:        in.AnalysisName,
		AnalysisDescription: in.AnalysisDescription,
		ExcludedStatuses:    in.ExcludedStatuses,

		TotalTickets:    len(in.Valid),
		OriginalTickets: in.OriginalTickets,
		ClosedTickets:   closed,
		OpenTickets:     len(in.Valid) - closed,
		DiscardedCount:  in.Discarded,
		SLABreaches:     breaches,

		MTTR:                in.Aggregator.MTTR(),
		MTD:                 in.Aggregator.MTD(),
		ResolutionBreakdown: in.Aggregator.ResolutionBreakdown(),
		Percentiles:         in.Aggregator.Percentiles(),
		TimeDistributions:   in.Aggregator.TimeDistributions(),
		WeeklyTrends:        in.Aggregator.WeeklyTrends(),
		SummaryStatistics:   in.Aggregator.SummaryStatistics(),
		Outliers:            in.Aggregator.Outliers(threshold),
		ZScoreOutliers:      in.Aggregator.ZScoreOutliers(threshold),

		RawData: in.Valid[:sample],
	}
}

func isCompleted(status string, completionStatuses []string) bool {
	for _, completion := range completionStatuses {
		if strings.EqualFold(status, completion) {
			return true
		}
	}
	return false
}
