package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"aktis-soc-metrics/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := common.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Analyzer.Port)
	assert.Equal(t, "In Progress", cfg.Analysis.Lifecycle.FirstActionStatus)
	assert.NotEmpty(t, cfg.Analysis.SLA)
	assert.NotEmpty(t, cfg.Analysis.AlertCategories)
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[analyzer]
port = 9090
project_key = "SOC"

[analysis.lifecycle]
first_action_status = "Triage"

[analysis.business_hours]
hours_per_day = 10
days_per_week = 6

[reports]
output_dir = "out/reports"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := common.LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Analyzer.Port)
	assert.Equal(t, "SOC", cfg.Analyzer.ProjectKey)
	assert.Equal(t, "Triage", cfg.Analysis.Lifecycle.FirstActionStatus)
	assert.Equal(t, 10, cfg.Analysis.BusinessHours.HoursPerDay)
	assert.Equal(t, 6, cfg.Analysis.BusinessHours.DaysPerWeek)
	assert.Equal(t, "out/reports", cfg.Reports.OutputDir)

	// Untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Analysis.SLA)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := common.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*common.Config)
	}{
		{"empty first action status", func(c *common.Config) { c.Analysis.Lifecycle.FirstActionStatus = " " }},
		{"no SLA thresholds", func(c *common.Config) { c.Analysis.SLA = nil }},
		{"non-positive SLA hours", func(c *common.Config) { c.Analysis.SLA[0].Hours = 0 }},
		{"hours per day out of range", func(c *common.Config) { c.Analysis.BusinessHours.HoursPerDay = 25 }},
		{"days per week out of range", func(c *common.Config) { c.Analysis.BusinessHours.DaysPerWeek = 0 }},
		{"duplicate alert category", func(c *common.Config) {
			c.Analysis.AlertCategories = append(c.Analysis.AlertCategories, common.AlertCategory{Name: "phishing"})
		}},
		{"invalid log level", func(c *common.Config) { c.Logging.Level = "verbose" }},
		{"missing database path", func(c *common.Config) { c.Storage.DatabasePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := common.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSLAThresholdFor(t *testing.T) {
	analysis := common.DefaultAnalysisConfig()

	assert.Equal(t, 4.0, analysis.SLAThresholdFor("Critical"))
	assert.Equal(t, 4.0, analysis.SLAThresholdFor("critical"))
	assert.Equal(t, 48.0, analysis.SLAThresholdFor("Low"))
	// Unknown tiers fall back to the Medium window
	assert.Equal(t, 24.0, analysis.SLAThresholdFor("Banana"))
}

func TestSeverityFor(t *testing.T) {
	analysis := common.DefaultAnalysisConfig()

	assert.Equal(t, "Critical", analysis.SeverityFor("Highest"))
	assert.Equal(t, "Low", analysis.SeverityFor("lowest"))
	assert.Equal(t, "Medium", analysis.SeverityFor("P0"))
	assert.Equal(t, "Medium", analysis.SeverityFor(""))
}

func TestResolutionCategories(t *testing.T) {
	analysis := common.DefaultAnalysisConfig()

	categories := analysis.ResolutionCategories()
	assert.Equal(t, []string{"expected-activity", "false-positive", "true-positive", "duplicate", "testing"}, categories)

	// Duplicate categories collapse while keeping declaration order
	analysis.Lifecycle.ResolutionMapping = append(analysis.Lifecycle.ResolutionMapping,
		common.ResolutionMapping{Status: "Other", Category: "false-positive"})
	assert.Equal(t, categories, analysis.ResolutionCategories())
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "no markup here", "no markup here"},
		{"tags removed", "<b>alert</b> on <i>host</i>", "alert on host"},
		{"nested markup", "<div><span>deep</span> text</div>", "deep text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, common.StripTags(tt.input))
		})
	}
}
