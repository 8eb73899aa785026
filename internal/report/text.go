package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/models"
)

// WriteTextReport renders a plain-text summary of one analysis run.
func WriteTextReport(data *models.ReportData, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "mkdir_failed", "failed to create report directory")
	}

	var b strings.Builder

	b.WriteString("SOC Metrics Report\n")
	b.WriteString(strings.Repeat("=", 20) + "\n")
	fmt.Fprintf(&b, "Run ID: %s\n", data.RunID)
	fmt.Fprintf(&b, "Generated At: %s\n", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Project Key: %s\n", data.ProjectKey)
	fmt.Fprintf(&b, "Analysis Type: %s\n", data.AnalysisName)
	fmt.Fprintf(&b, "Description: %s\n", data.AnalysisDescription)
	if len(data.ExcludedStatuses) > 0 {
		fmt.Fprintf(&b, "Excluded Statuses: %s\n", strings.Join(data.ExcludedStatuses, ", "))
	}
	fmt.Fprintf(&b, "Total Tickets Analyzed: %d\n", data.TotalTickets)
	fmt.Fprintf(&b, "Original Tickets: %d\n", data.OriginalTickets)
	fmt.Fprintf(&b, "Closed Tickets: %d\n", data.ClosedTickets)
	fmt.Fprintf(&b, "Open Tickets: %d\n", data.OpenTickets)
	fmt.Fprintf(&b, "Discarded Tickets: %d\n", data.DiscardedCount)
	fmt.Fprintf(&b, "SLA Breaches: %d\n", data.SLABreaches)

	b.WriteString("\nKey Metrics:\n")
	fmt.Fprintf(&b, "   MTTR: %.2f hours (%.2f working hours)\n", data.MTTR.Hours, data.MTTR.WorkingHours)
	fmt.Fprintf(&b, "   MTD: %.2f hours (%.2f working hours)\n", data.MTD.Hours, data.MTD.WorkingHours)

	b.WriteString("\nResolution Breakdown:\n")
	categories := make([]string, 0, len(data.ResolutionBreakdown))
	for category := range data.ResolutionBreakdown {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&b, "   %s: %d\n", category, data.ResolutionBreakdown[category])
	}

	b.WriteString("\nSummary Statistics:\n")
	stats := data.SummaryStatistics
	fmt.Fprintf(&b, "   avg_detection_time: %.2f\n", stats.AvgDetectionTime)
	fmt.Fprintf(&b, "   avg_resolution_time: %.2f\n", stats.AvgResolutionTime)
	fmt.Fprintf(&b, "   median_detection_time: %.2f\n", stats.MedianDetectionTime)
	fmt.Fprintf(&b, "   median_resolution_time: %.2f\n", stats.MedianResolutionTime)
	fmt.Fprintf(&b, "   std_detection_time: %.2f\n", stats.StdDetectionTime)
	fmt.Fprintf(&b, "   std_resolution_time: %.2f\n", stats.StdResolutionTime)
	fmt.Fprintf(&b, "   min/max detection: %.2f / %.2f\n", stats.MinDetectionTime, stats.MaxDetectionTime)
	fmt.Fprintf(&b, "   min/max resolution: %.2f / %.2f\n", stats.MinResolutionTime, stats.MaxResolutionTime)

	b.WriteString("\nWeekly Trends:\n")
	if len(data.WeeklyTrends) == 0 {
		b.WriteString("   No weekly trends available\n")
	}
	for _, trend := range data.WeeklyTrends {
		fmt.Fprintf(&b, "   %s: %d tickets, avg resolution %.2f hours\n", trend.Week, trend.TicketCount, trend.AvgResolutionTime)
	}

	b.WriteString("\nRaw Data Sample:\n")
	limit := len(data.RawData)
	if limit > 10 {
		limit = 10
	}
	for _, record := range data.RawData[:limit] {
		fmt.Fprintf(&b, "   %s: %s\n", record.Key, record.Summary)
		fmt.Fprintf(&b, "      Status: %s, Priority: %s\n", record.Status, record.Priority)
		fmt.Fprintf(&b, "      Total Time: %.2fh, Detection: %.2fh\n", record.TotalTimeHours, record.DetectionTimeHours)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "write_failed", "failed to write text report")
	}
	return nil
}
