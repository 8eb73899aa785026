package metrics_test

import (
	"testing"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/metrics"
	"aktis-soc-metrics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeriver(t *testing.T) *metrics.Deriver {
	t.Helper()
	analysis := common.DefaultAnalysisConfig()
	return metrics.NewDeriver(&analysis, nil)
}

func statusChange(to, created string) models.ChangeEvent {
	return models.ChangeEvent{Field: "status", To: to, Created: created}
}

func TestDerive_TimeMetrics(t *testing.T) {
	deriver := newTestDeriver(t)

	ticket := &models.TicketData{
		Key:            "SOC-101",
		Summary:        "Suspicious login attempt",
		Status:         "True Positive",
		Priority:       "High",
		Created:        "2024-03-04T08:00:00Z",
		Updated:        "2024-03-04T15:00:00Z",
		ResolutionDate: "2024-03-04T14:00:00Z",
		Changelog: []models.ChangeEvent{
			statusChange("In Progress", "2024-03-04T10:00:00Z"),
			statusChange("True Positive", "2024-03-04T14:00:00Z"),
		},
	}

	record, err := deriver.Derive(ticket)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.InDelta(t, 2.0, record.DetectionTimeHours, 1e-9)
	assert.InDelta(t, 4.0, record.ResolutionTimeHours, 1e-9)
	assert.InDelta(t, 6.0, record.TotalTimeHours, 1e-9)
	assert.Equal(t, "access_control", record.AlertCategory)
	assert.Equal(t, "High", record.Severity)
	assert.Equal(t, "true-positive", record.ResolutionCategory)
	assert.False(t, record.SLABreach)
}

func TestDerive_ResolutionFallsBackToUpdated(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{
		Key:     "SOC-102",
		Status:  "Open",
		Created: "2024-03-04T08:00:00Z",
		Updated: "2024-03-04T20:00:00Z",
	})
	require.NoError(t, err)

	assert.InDelta(t, 12.0, record.TotalTimeHours, 1e-9)
}

func TestDerive_NoFirstAction(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{
		Key:            "SOC-103",
		Status:         "False Positive",
		Created:        "2024-03-04T08:00:00Z",
		Updated:        "2024-03-04T08:30:00Z",
		ResolutionDate: "2024-03-04T11:00:00Z",
	})
	require.NoError(t, err)

	assert.Zero(t, record.DetectionTimeHours)
	assert.InDelta(t, record.TotalTimeHours, record.ResolutionTimeHours, 1e-9)
}

func TestDerive_SLABreach(t *testing.T) {
	deriver := newTestDeriver(t)

	// Highest maps to Critical with a 4 hour window; 5 hours breaches it
	record, err := deriver.Derive(&models.TicketData{
		Key:            "SOC-104",
		Priority:       "Highest",
		Status:         "True Positive",
		Created:        "2024-03-04T08:00:00Z",
		Updated:        "2024-03-04T13:00:00Z",
		ResolutionDate: "2024-03-04T13:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "Critical", record.Severity)
	assert.True(t, record.SLABreach)
}

func TestDerive_UnknownPriorityUsesMediumSLA(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{
		Key:            "SOC-105",
		Priority:       "P1",
		Status:         "Open",
		Created:        "2024-03-01T00:00:00Z",
		Updated:        "2024-03-01T20:00:00Z",
		ResolutionDate: "2024-03-01T20:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "Medium", record.Severity)
	assert.False(t, record.SLABreach) // 20h within the 24h Medium window
}

func TestDerive_MissingKey(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{Status: "Open"})
	assert.Nil(t, record)
	require.Error(t, err)

	var analyzerErr *common.AnalyzerError
	require.ErrorAs(t, err, &analyzerErr)
	assert.Equal(t, common.ErrorTypeDerivation, analyzerErr.Type)
}

func TestDerive_BadTimestampKeepsClassifications(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{
		Key:      "SOC-106",
		Summary:  "Phishing campaign",
		Priority: "High",
		Status:   "Open",
		Created:  "not-a-timestamp",
		Updated:  "2024-03-04T08:00:00Z",
	})
	require.Error(t, err)
	require.NotNil(t, record)

	var analyzerErr *common.AnalyzerError
	require.ErrorAs(t, err, &analyzerErr)
	assert.Equal(t, common.ErrorTypeTimestamp, analyzerErr.Type)

	assert.Zero(t, record.TotalTimeHours)
	assert.False(t, record.SLABreach)
	assert.Equal(t, "phishing", record.AlertCategory)
	assert.Equal(t, "High", record.Severity)
}

func TestDerive_TimestampLayouts(t *testing.T) {
	deriver := newTestDeriver(t)

	tests := []struct {
		name    string
		created string
	}{
		{"rfc3339", "2024-03-04T08:00:00Z"},
		{"rfc3339 with millis", "2024-03-04T08:00:00.123Z"},
		{"offset without colon and millis", "2024-03-04T08:00:00.000+0100"},
		{"offset without colon", "2024-03-04T08:00:00+0100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := deriver.Derive(&models.TicketData{
				Key:     "SOC-107",
				Status:  "Open",
				Created: tt.created,
				Updated: "2024-03-04T12:00:00Z",
			})
			require.NoError(t, err)
			assert.False(t, record.CreatedAt.IsZero())
		})
	}
}

func TestDerive_EscalationCount(t *testing.T) {
	deriver := newTestDeriver(t)

	record, err := deriver.Derive(&models.TicketData{
		Key:     "SOC-108",
		Status:  "Open",
		Created: "2024-03-04T08:00:00Z",
		Updated: "2024-03-04T09:00:00Z",
		Changelog: []models.ChangeEvent{
			{Field: "priority", From: "Low", To: "High", Created: "2024-03-04T08:10:00Z"},
			{Field: "assignee", From: "", To: "analyst", Created: "2024-03-04T08:15:00Z"},
			{Field: "priority", From: "High", To: "Highest", Created: "2024-03-04T08:20:00Z"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, record.EscalationCount)
}

func TestDerive_AlertCategory(t *testing.T) {
	deriver := newTestDeriver(t)

	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{"phishing keyword", "Phishing email reported by user", "phishing"},
		{"malware keyword", "Ransomware detected on host", "malware"},
		{"case insensitive", "MALWARE alert", "malware"},
		{"first category wins", "phishing email delivering malware", "phishing"},
		{"no keyword", "Scheduled maintenance window", "general"},
		{"empty summary", "", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := deriver.Derive(&models.TicketData{
				Key:     "SOC-109",
				Summary: tt.summary,
				Status:  "Open",
				Created: "2024-03-04T08:00:00Z",
				Updated: "2024-03-04T09:00:00Z",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, record.AlertCategory)
		})
	}
}

func TestDerive_ResolutionCategory(t *testing.T) {
	analysis := common.DefaultAnalysisConfig()
	analysis.Lifecycle.CompletionStatuses = append(analysis.Lifecycle.CompletionStatuses, "Needs Review")
	deriver := metrics.NewDeriver(&analysis, nil)

	tests := []struct {
		name       string
		status     string
		resolution string
		want       string
	}{
		{"mapped completion status", "False Positive", "", "false-positive"},
		{"completion status case insensitive", "false positive", "", "false-positive"},
		{"unmapped completion status slugified", "Needs Review", "", "needs-review"},
		{"resolution name mapped", "Closed", "True Positive", "true-positive"},
		{"done status", "Done", "", "done"},
		{"resolved status", "Resolved", "", "done"},
		{"open ticket", "Open", "", "open"},
		{"in progress ticket", "In Progress", "", "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := deriver.Derive(&models.TicketData{
				Key:        "SOC-110",
				Status:     tt.status,
				Resolution: tt.resolution,
				Created:    "2024-03-04T08:00:00Z",
				Updated:    "2024-03-04T09:00:00Z",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, record.ResolutionCategory)
		})
	}
}

func TestDeriveAll_IsolatesFailures(t *testing.T) {
	deriver := newTestDeriver(t)

	tickets := []*models.TicketData{
		{Key: "SOC-1", Status: "Open", Created: "2024-03-04T08:00:00Z", Updated: "2024-03-04T09:00:00Z"},
		{Status: "Open"}, // no key
		{Key: "SOC-2", Status: "Open", Created: "garbage", Updated: "2024-03-04T09:00:00Z"},
		{Key: "SOC-3", Status: "Open", Created: "2024-03-04T08:00:00Z", Updated: "2024-03-04T10:00:00Z"},
	}

	records, report := deriver.DeriveAll(tickets)

	// The bad-timestamp ticket still yields a usable record
	assert.Len(t, records, 3)
	assert.Equal(t, 3, report.Derived)
	assert.Equal(t, 2, report.FailureCount())
	assert.Equal(t, 1, report.Failures[common.ErrorTypeDerivation])
	assert.Equal(t, 1, report.Failures[common.ErrorTypeTimestamp])
}
