package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	. "aktis-soc-metrics/internal/common"
	. "aktis-soc-metrics/internal/interfaces"

	"aktis-soc-metrics/internal/metrics"
	"aktis-soc-metrics/internal/models"
	"aktis-soc-metrics/internal/report"

	"github.com/ternarybob/arbor"
)

// analysisType scopes one metrics run: which tickets are in play and how the
// run is labelled in the report output.
type analysisType struct {
	Key             string
	Name            string
	Description     string
	ExcludeStatuses []string
}

var analysisTypes = []analysisType{
	{
		Key:         "all",
		Name:        "All Tickets",
		Description: "Every stored ticket, no status exclusions",
	},
	{
		Key:             "production",
		Name:            "Production Incidents",
		Description:     "Excludes testing and duplicate tickets",
		ExcludeStatuses: []string{"Testing", "Duplicate"},
	},
}

type analyzerService struct {
	config  *Config
	storage Storage
	logger  arbor.ILogger
}

func NewAnalyzer(config *Config, storage Storage, logger arbor.ILogger) Analyzer {
	return &analyzerService{
		config:  config,
		storage: storage,
		logger:  logger,
	}
}

func (a *analyzerService) AnalysisTypes() []string {
	keys := make([]string, 0, len(analysisTypes))
	for _, at := range analysisTypes {
		keys = append(keys, at.Key)
	}
	return keys
}

// Run executes one full metrics pass: load, filter, derive, validate,
// aggregate, assemble, render. The stored tickets are never modified.
func (a *analyzerService) Run(typeKey string) (*models.ReportData, error) {
	at, err := resolveAnalysisType(typeKey)
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("analysis_type", at.Key).
		Str("project", a.config.Analyzer.ProjectKey).
		Msg("Starting metrics analysis")

	tickets, err := a.loadTickets()
	if err != nil {
		return nil, WrapError(err, ErrorTypeStorage, "LOAD_FAILED", "failed to load tickets")
	}
	original := len(tickets)

	excluded := append([]string{}, at.ExcludeStatuses...)
	excluded = append(excluded, a.config.Analysis.Lifecycle.ExcludeStatuses...)
	tickets, excludedCount := filterExcluded(tickets, excluded)
	if excludedCount > 0 {
		a.logger.Info().
			Int("excluded", excludedCount).
			Str("statuses", strings.Join(excluded, ",")).
			Msg("Excluded tickets by status")
	}

	deriver := metrics.NewDeriver(&a.config.Analysis, a.logger)
	records, deriveReport := deriver.DeriveAll(tickets)

	valid, dropped := metrics.Validate(records, a.logger)
	discarded := deriveReport.FailureCount() + dropped

	a.logger.Info().
		Int("original", original).
		Int("derived", deriveReport.Derived).
		Int("valid", len(valid)).
		Int("discarded", discarded).
		Msg("Derivation complete")

	aggregator := metrics.NewAggregator(valid, &a.config.Analysis)

	data := report.Assemble(report.AssembleInput{
		ProjectKey:          a.config.Analyzer.ProjectKey,
		AnalysisType:        at.Key,
		AnalysisName:        at.Name,
		AnalysisDescription: at.Description,
		ExcludedStatuses:    excluded,
		OriginalTickets:     original,
		Discarded:           discarded,
		Valid:               valid,
		Aggregator:          aggregator,
		CompletionStatuses:  a.config.Analysis.Lifecycle.CompletionStatuses,
		RawSample:           a.config.Reports.RawSample,
	})

	if err := a.writeReports(data); err != nil {
		return nil, err
	}

	if err := a.storage.SaveReport(data); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to persist report snapshot")
	}

	a.logger.Info().
		Str("run_id", data.RunID).
		Int("tickets", data.TotalTickets).
		Int("sla_breaches", data.SLABreaches).
		Msg("Analysis run complete")

	return data, nil
}

// loadTickets returns the working set sorted by ticket key so repeated runs
// over the same data produce identical output.
func (a *analyzerService) loadTickets() ([]*models.TicketData, error) {
	var stored map[string]*models.TicketData
	var err error

	if a.config.Analyzer.ProjectKey != "" {
		stored, err = a.storage.LoadTickets(a.config.Analyzer.ProjectKey)
	} else {
		stored, err = a.storage.LoadAllTickets()
	}
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(stored))
	for key := range stored {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if max := a.config.Analyzer.MaxTickets; max > 0 && len(keys) > max {
		keys = keys[:max]
	}

	tickets := make([]*models.TicketData, 0, len(keys))
	for _, key := range keys {
		tickets = append(tickets, stored[key])
	}
	return tickets, nil
}

func (a *analyzerService) writeReports(data *models.ReportData) error {
	outputDir := a.config.Reports.OutputDir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return WrapError(err, ErrorTypeReport, "OUTPUT_DIR_FAILED", "failed to create report directory")
	}

	stamp := data.GeneratedAt.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s_%s", a.config.Reports.Prefix, data.AnalysisType, stamp)

	textPath := filepath.Join(outputDir, base+".txt")
	if err := report.WriteTextReport(data, textPath); err != nil {
		return WrapError(err, ErrorTypeReport, "TEXT_REPORT_FAILED", "failed to write text report")
	}

	htmlPath := filepath.Join(outputDir, base+".html")
	if err := report.WriteHTMLReport(data, htmlPath); err != nil {
		return WrapError(err, ErrorTypeReport, "HTML_REPORT_FAILED", "failed to write HTML report")
	}

	a.logger.Info().
		Str("text", textPath).
		Str("html", htmlPath).
		Msg("Reports written")

	return nil
}

func resolveAnalysisType(key string) (analysisType, error) {
	if key == "" {
		key = "all"
	}
	for _, at := range analysisTypes {
		if strings.EqualFold(at.Key, key) {
			return at, nil
		}
	}
	return analysisType{}, NewValidationError("UNKNOWN_ANALYSIS_TYPE",
		fmt.Sprintf("unknown analysis type: %s", key))
}

func filterExcluded(tickets []*models.TicketData, excluded []string) ([]*models.TicketData, int) {
	if len(excluded) == 0 {
		return tickets, 0
	}

	kept := make([]*models.TicketData, 0, len(tickets))
	removed := 0
	for _, ticket := range tickets {
		if statusExcluded(ticket.Status, excluded) {
			removed++
			continue
		}
		kept = append(kept, ticket)
	}
	return kept, removed
}

func statusExcluded(status string, excluded []string) bool {
	for _, candidate := range excluded {
		if strings.EqualFold(status, candidate) {
			return true
		}
	}
	return false
}
