package report_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/metrics"
	"aktis-soc-metrics/internal/models"
	"aktis-soc-metrics/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembleFixture(t *testing.T, rawSample int) *models.ReportData {
	t.Helper()

	analysis := common.DefaultAnalysisConfig()

	valid := []*models.TicketMetrics{
		{Key: "SOC-1", Status: "True Positive", DetectionTimeHours: 2, ResolutionTimeHours: 3, TotalTimeHours: 5, SLABreach: true, ResolutionCategory: "true-positive", CreatedAt: time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)},
		{Key: "SOC-2", Status: "False Positive", DetectionTimeHours: 1, ResolutionTimeHours: 2, TotalTimeHours: 3, ResolutionCategory: "false-positive", CreatedAt: time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)},
		{Key: "SOC-3", Status: "Open", DetectionTimeHours: 0, ResolutionTimeHours: 8, TotalTimeHours: 8, ResolutionCategory: "open", CreatedAt: time.Date(2024, 2, 7, 9, 0, 0, 0, time.UTC)},
	}

	return report.Assemble(report.AssembleInput{
		ProjectKey:          "SOC",
		AnalysisType:        "all",
		AnalysisName:        "All Tickets",
		AnalysisDescription: "Every stored ticket",
		OriginalTickets:     5,
		Discarded:           2,
		Valid:               valid,
		Aggregator:          metrics.NewAggregator(valid, &analysis),
		CompletionStatuses:  analysis.Lifecycle.CompletionStatuses,
		RawSample:           rawSample,
	})
}

func TestAssemble(t *testing.T) {
	data := assembleFixture(t, 100)

	assert.NotEmpty(t, data.RunID)
	assert.False(t, data.GeneratedAt.IsZero())
	assert.Equal(t, "SOC", data.ProjectKey)
	assert.Equal(t, "all", data.AnalysisType)

	assert.Equal(t, 3, data.TotalTickets)
	assert.Equal(t, 5, data.OriginalTickets)
	assert.Equal(t, 2, data.DiscardedCount)
	assert.Equal(t, 2, data.ClosedTickets)
	assert.Equal(t, 1, data.OpenTickets)
	assert.Equal(t, 1, data.SLABreaches)

	assert.Equal(t, 1, data.ResolutionBreakdown["true-positive"])
	assert.InDelta(t, 13.0/3, data.MTTR.Hours, 1e-9)
	assert.Len(t, data.RawData, 3)
	assert.Len(t, data.WeeklyTrends, 1)
	assert.Len(t, data.TimeDistributions.DetectionTimes, 3)
	assert.Len(t, data.TimeDistributions.ResolutionTimes, 3)
	assert.Len(t, data.TimeDistributions.TotalTimes, 3)
}

func TestAssemble_FreshRunIDPerCall(t *testing.T) {
	first := assembleFixture(t, 100)
	second := assembleFixture(t, 100)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAssemble_RawDataCapped(t *testing.T) {
	data := assembleFixture(t, 2)
	assert.Len(t, data.RawData, 2)
}

func TestWriteTextReport(t *testing.T) {
	data := assembleFixture(t, 100)

	path := filepath.Join(t.TempDir(), "nested", "report.txt")
	require.NoError(t, report.WriteTextReport(data, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "SOC Metrics Report")
	assert.Contains(t, text, data.RunID)
	assert.Contains(t, text, "Total Tickets Analyzed: 3")
	assert.Contains(t, text, "SLA Breaches: 1")
	assert.Contains(t, text, "true-positive: 1")
}

func TestWriteHTMLReport(t *testing.T) {
	data := assembleFixture(t, 100)

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, report.WriteHTMLReport(data, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "SOC Performance Metrics Report")
	assert.Contains(t, html, data.RunID)
	assert.Contains(t, html, "Resolution Breakdown")
	assert.Contains(t, html, "2024-W06")
}
