package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Analyzer AnalyzerConfig `toml:"analyzer"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	Analysis AnalysisConfig `toml:"analysis"`
	Reports  ReportConfig   `toml:"reports"`
}

type AnalyzerConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	Port        int    `toml:"port"`
	ProjectKey  string `toml:"project_key"`
	MaxTickets  int    `toml:"max_tickets"`
}

type StorageConfig struct {
	DatabasePath  string `toml:"database_path"`
	BackupDir     string `toml:"backup_dir"`
	RetentionDays int    `toml:"retention_days"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
}

type ReportConfig struct {
	OutputDir string `toml:"output_dir"`
	Prefix    string `toml:"prefix"`
	RawSample int    `toml:"raw_sample"`
}

// AnalysisConfig holds the classification and SLA rules injected into the
// metrics engine. These are configuration data, never derived from tickets.
type AnalysisConfig struct {
	BusinessHours   BusinessHoursConfig `toml:"business_hours"`
	Lifecycle       LifecycleConfig     `toml:"lifecycle"`
	Severity        []SeverityMapping   `toml:"severity"`
	SLA             []SLAThreshold      `toml:"sla"`
	AlertCategories []AlertCategory     `toml:"alert_categories"`
}

type BusinessHoursConfig struct {
	HoursPerDay int `toml:"hours_per_day"`
	DaysPerWeek int `toml:"days_per_week"`
}

// LifecycleConfig describes how workflow statuses map onto the
// detection/resolution lifecycle.
type LifecycleConfig struct {
	FirstActionStatus  string              `toml:"first_action_status"`
	CompletionStatuses []string            `toml:"completion_statuses"`
	ExcludeStatuses    []string            `toml:"exclude_statuses"`
	ResolutionMapping  []ResolutionMapping `toml:"resolution_mapping"`
}

type ResolutionMapping struct {
	Status   string `toml:"status"`
	Category string `toml:"category"`
}

type SeverityMapping struct {
	Priority string `toml:"priority"`
	Severity string `toml:"severity"`
}

type SLAThreshold struct {
	Severity string  `toml:"severity"`
	Hours    float64 `toml:"hours"`
}

// AlertCategory pairs a category name with its summary keywords. Declaration
// order is the matching order: the first category with a matching keyword
// wins.
type AlertCategory struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

func DefaultConfig() *Config {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]

	defaultDBPath := filepath.Join(execDir, "data", execName+".db")

	return &Config{
		Analyzer: AnalyzerConfig{
			Name:        execName,
			Environment: "development",
			Port:        8080,
			MaxTickets:  1000,
		},
		Storage: StorageConfig{
			DatabasePath:  defaultDBPath,
			BackupDir:     "./backups",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 3,
		},
		Reports: ReportConfig{
			OutputDir: "results/reports",
			Prefix:    "soc_metrics",
			RawSample: 100,
		},
		Analysis: DefaultAnalysisConfig(),
	}
}

// DefaultAnalysisConfig returns the stock SOC classification rules. Every
// value can be overridden in the TOML file.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		BusinessHours: BusinessHoursConfig{
			HoursPerDay: 8,
			DaysPerWeek: 5,
		},
		Lifecycle: LifecycleConfig{
			FirstActionStatus: "In Progress",
			CompletionStatuses: []string{
				"Expected Activity", "False Positive", "True Positive", "Duplicate", "Testing",
			},
			ResolutionMapping: []ResolutionMapping{
				{Status: "Expected Activity", Category: "expected-activity"},
				{Status: "False Positive", Category: "false-positive"},
				{Status: "True Positive", Category: "true-positive"},
				{Status: "Duplicate", Category: "duplicate"},
				{Status: "Testing", Category: "testing"},
			},
		},
		Severity: []SeverityMapping{
			{Priority: "Highest", Severity: "Critical"},
			{Priority: "High", Severity: "High"},
			{Priority: "Medium", Severity: "Medium"},
			{Priority: "Low", Severity: "Low"},
			{Priority: "Lowest", Severity: "Low"},
		},
		SLA: []SLAThreshold{
			{Severity: "Critical", Hours: 4},
			{Severity: "High", Hours: 8},
			{Severity: "Medium", Hours: 24},
			{Severity: "Low", Hours: 48},
			{Severity: "Info", Hours: 72},
		},
		AlertCategories: []AlertCategory{
			{Name: "phishing", Keywords: []string{"phishing", "email", "spam", "suspicious_email"}},
			{Name: "malware", Keywords: []string{"malware", "virus", "trojan", "ransomware", "malicious"}},
			{Name: "access_control", Keywords: []string{"login", "authentication", "access", "unauthorized"}},
			{Name: "network_security", Keywords: []string{"network", "traffic", "firewall", "ddos"}},
			{Name: "data_protection", Keywords: []string{"data", "leak", "breach", "pii", "sensitive"}},
			{Name: "general", Keywords: []string{}},
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		// Auto-detect config file
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		execName := filepath.Base(execPath)
		execName = execName[:len(execName)-len(filepath.Ext(execName))]

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			return config, nil
		}
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}
	if backupDir := os.Getenv("BACKUP_DIR"); backupDir != "" {
		config.Storage.BackupDir = backupDir
	}
	if projectKey := os.Getenv("PROJECT_KEY"); projectKey != "" {
		config.Analyzer.ProjectKey = projectKey
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Analyzer.Port = portNum
		}
	}

	if firstAction := os.Getenv("FIRST_ACTION_STATUS"); firstAction != "" {
		config.Analysis.Lifecycle.FirstActionStatus = firstAction
	}
	if statuses := os.Getenv("COMPLETION_STATUSES"); statuses != "" {
		config.Analysis.Lifecycle.CompletionStatuses = splitAndTrim(statuses)
	}
	if statuses := os.Getenv("EXCLUDE_STATUSES"); statuses != "" {
		config.Analysis.Lifecycle.ExcludeStatuses = splitAndTrim(statuses)
	}
	if hours := os.Getenv("WORKING_HOURS_PER_DAY"); hours != "" {
		if n, err := strconv.Atoi(hours); err == nil {
			config.Analysis.BusinessHours.HoursPerDay = n
		}
	}
	if days := os.Getenv("WORKING_DAYS_PER_WEEK"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			config.Analysis.BusinessHours.DaysPerWeek = n
		}
	}
	if reportDir := os.Getenv("REPORT_OUTPUT_DIR"); reportDir != "" {
		config.Reports.OutputDir = reportDir
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate checks the configuration before any ticket is processed. A bad
// classification or SLA rule is fatal at startup, not discovered mid-run.
func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path is required")
	}

	if c.Analyzer.Port <= 0 {
		c.Analyzer.Port = 8080
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validOutputs := []string{"console", "file", "both"}
	validOutput := false
	for _, output := range validOutputs {
		if c.Logging.Output == output {
			validOutput = true
			break
		}
	}
	if !validOutput {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return c.Analysis.Validate()
}

// Validate enforces the invariants of the analysis rules: positive SLA
// thresholds, a sane business-hours model, and unambiguous category names.
func (a *AnalysisConfig) Validate() error {
	if strings.TrimSpace(a.Lifecycle.FirstActionStatus) == "" {
		return fmt.Errorf("lifecycle first_action_status is required")
	}

	if len(a.SLA) == 0 {
		return fmt.Errorf("at least one SLA threshold is required")
	}
	for _, threshold := range a.SLA {
		if threshold.Hours <= 0 {
			return fmt.Errorf("invalid SLA threshold for %s: %v hours", threshold.Severity, threshold.Hours)
		}
	}

	bh := a.BusinessHours
	if bh.HoursPerDay <= 0 || bh.HoursPerDay > 24 {
		return fmt.Errorf("invalid working hours per day: %d", bh.HoursPerDay)
	}
	if bh.DaysPerWeek <= 0 || bh.DaysPerWeek > 7 {
		return fmt.Errorf("invalid working days per week: %d", bh.DaysPerWeek)
	}

	seen := make(map[string]bool)
	for _, category := range a.AlertCategories {
		if category.Name == "" {
			return fmt.Errorf("alert category with empty name")
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate alert category: %s", category.Name)
		}
		seen[category.Name] = true
	}

	return nil
}

// SLAThresholdFor returns the SLA window in hours for a severity tier,
// falling back to the Medium threshold for unknown tiers.
func (a *AnalysisConfig) SLAThresholdFor(severity string) float64 {
	var medium float64 = 24
	for _, threshold := range a.SLA {
		if strings.EqualFold(threshold.Severity, "Medium") {
			medium = threshold.Hours
		}
	}
	for _, threshold := range a.SLA {
		if strings.EqualFold(threshold.Severity, severity) {
			return threshold.Hours
		}
	}
	return medium
}

// SeverityFor maps a ticket priority to a severity tier, defaulting to
// Medium for unrecognized priorities.
func (a *AnalysisConfig) SeverityFor(priority string) string {
	for _, mapping := range a.Severity {
		if strings.EqualFold(mapping.Priority, priority) {
			return mapping.Severity
		}
	}
	return "Medium"
}

// ResolutionCategories returns the configured category tags in declaration
// order. The aggregation layer uses this as the stable breakdown key set.
func (a *AnalysisConfig) ResolutionCategories() []string {
	categories := make([]string, 0, len(a.Lifecycle.ResolutionMapping))
	seen := make(map[string]bool)
	for _, mapping := range a.Lifecycle.ResolutionMapping {
		if !seen[mapping.Category] {
			categories = append(categories, mapping.Category)
			seen[mapping.Category] = true
		}
	}
	return categories
}

func (c *Config) IsProduction() bool {
	return c.Logging.Level == "warn" || c.Logging.Level == "error" || c.Logging.Level == "fatal"
}
