package report

import (
	"html/template"
	"os"
	"path/filepath"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/models"
)

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SOC Metrics Report - {{.ProjectKey}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #5b2d90; padding-bottom: 0.3em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f2ecf9; }
.kpi { display: inline-block; background: #f7f7f7; border-left: 4px solid #5b2d90; margin: 0.5em 1em 0.5em 0; padding: 0.6em 1em; }
.kpi .value { font-size: 1.6em; font-weight: bold; }
.breach { color: #b00020; font-weight: bold; }
</style>
</head>
<body>
<h1>SOC Performance Metrics Report</h1>
<p>{{.AnalysisName}} &mdash; generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC (run {{.RunID}})</p>

<div>
<div class="kpi"><div>MTTR</div><div class="value">{{printf "%.2f" .MTTR.Hours}} h</div><div>{{printf "%.2f" .MTTR.WorkingHours}} working h</div></div>
<div class="kpi"><div>MTD</div><div class="value">{{printf "%.2f" .MTD.Hours}} h</div><div>{{printf "%.2f" .MTD.WorkingHours}} working h</div></div>
<div class="kpi"><div>Tickets</div><div class="value">{{.TotalTickets}}</div><div>{{.ClosedTickets}} closed / {{.OpenTickets}} open</div></div>
<div class="kpi"><div>SLA Breaches</div><div class="value {{if gt .SLABreaches 0}}breach{{end}}">{{.SLABreaches}}</div></div>
</div>

<h2>Resolution Breakdown</h2>
<table>
<tr><th>Category</th><th>Tickets</th></tr>
{{range $category, $count := .ResolutionBreakdown}}<tr><td>{{$category}}</td><td>{{$count}}</td></tr>
{{end}}
</table>

<h2>Percentiles (hours)</h2>
<table>
<tr><th>Series</th><th>P25</th><th>P50</th><th>P75</th><th>P90</th><th>P95</th><th>P99</th></tr>
<tr><td>Detection</td>{{template "cuts" .Percentiles.DetectionTime}}</tr>
<tr><td>Resolution</td>{{template "cuts" .Percentiles.ResolutionTime}}</tr>
<tr><td>Total</td>{{template "cuts" .Percentiles.TotalTime}}</tr>
</table>

<h2>Weekly Trends</h2>
<table>
<tr><th>Week</th><th>Tickets</th><th>Avg Detection (h)</th><th>Avg Resolution (h)</th><th>Avg Total (h)</th></tr>
{{range .WeeklyTrends}}<tr><td>{{.Week}}</td><td>{{.TicketCount}}</td><td>{{printf "%.2f" .AvgDetectionTime}}</td><td>{{printf "%.2f" .AvgResolutionTime}}</td><td>{{printf "%.2f" .AvgTotalTime}}</td></tr>
{{end}}
</table>

<h2>Outliers (IQR)</h2>
<table>
<tr><th>Ticket</th><th>Series</th><th>Hours</th><th>Status</th><th>Priority</th></tr>
{{range .Outliers.DetectionOutliers}}<tr><td>{{.Key}}</td><td>detection</td><td>{{printf "%.2f" .Time}}</td><td>{{.Status}}</td><td>{{.Priority}}</td></tr>
{{end}}{{range .Outliers.ResolutionOutliers}}<tr><td>{{.Key}}</td><td>resolution</td><td>{{printf "%.2f" .Time}}</td><td>{{.Status}}</td><td>{{.Priority}}</td></tr>
{{end}}
</table>

</body>
</html>
{{define "cuts"}}<td>{{printf "%.2f" .P25}}</td><td>{{printf "%.2f" .P50}}</td><td>{{printf "%.2f" .P75}}</td><td>{{printf "%.2f" .P90}}</td><td>{{printf "%.2f" .P95}}</td><td>{{printf "%.2f" .P99}}</td>{{end}}`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReportTemplate))

// WriteHTMLReport renders the report data as a standalone HTML page.
func WriteHTMLReport(data *models.ReportData, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "mkdir_failed", "failed to create report directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "create_failed", "failed to create HTML report")
	}
	defer file.Close()

	if err := htmlTemplate.Execute(file, data); err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "render_failed", "failed to render HTML report")
	}
	return nil
}
