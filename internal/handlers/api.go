package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/interfaces"
	"aktis-soc-metrics/internal/models"

	"github.com/ternarybob/arbor"
)

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	storage   interfaces.Storage
	analyzer  interfaces.Analyzer
	logger    arbor.ILogger
	parser    *TicketParser
	startTime time.Time
	wsHub     *WebSocketHub
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// StatusResponse represents the analyzer status response
type StatusResponse struct {
	Analyzer struct {
		Running       bool     `json:"running"`
		Uptime        float64  `json:"uptime"`
		AnalysisTypes []string `json:"analysis_types"`
	} `json:"analyzer"`
	Stats AnalyzerStats `json:"stats"`
}

// AnalyzerStats represents overall analyzer statistics
type AnalyzerStats struct {
	TotalTickets int    `json:"total_tickets"`
	LastIntake   string `json:"last_intake"`
	LastRun      string `json:"last_run"`
	LastRunID    string `json:"last_run_id"`
}

// ConfigResponse represents the configuration display response
type ConfigResponse struct {
	Analyzer *common.AnalyzerConfig `json:"analyzer"`
	Storage  *common.StorageConfig  `json:"storage"`
	Logging  *common.LoggingConfig  `json:"logging"`
	Analysis *common.AnalysisConfig `json:"analysis"`
	Reports  *common.ReportConfig   `json:"reports"`
}

// AnalyzeResponse represents the response to an analysis run request
type AnalyzeResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Error   string             `json:"error,omitempty"`
	Report  *models.ReportData `json:"report,omitempty"`
}

// ReceiverResponse represents the response to a ticket intake payload
type ReceiverResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	Error         string    `json:"error,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	TicketsAdded  int       `json:"tickets_added,omitempty"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, storage interfaces.Storage, analyzer interfaces.Analyzer, logger arbor.ILogger, wsHub *WebSocketHub) *APIHandlers {
	return &APIHandlers{
		config:    config,
		storage:   storage,
		analyzer:  analyzer,
		logger:    logger,
		parser:    NewTicketParser(),
		startTime: time.Now(),
		wsHub:     wsHub,
	}
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	if err := json.NewEncoder(w).Encode(health); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	versionResp := VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	}

	if err := json.NewEncoder(w).Encode(versionResp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode version response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// StatusHandler returns analyzer status and storage statistics
func (h *APIHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := StatusResponse{}
	status.Analyzer.Running = true
	status.Analyzer.Uptime = time.Since(h.startTime).Seconds()
	status.Analyzer.AnalysisTypes = h.analyzer.AnalysisTypes()

	allTickets, err := h.storage.LoadAllTickets()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load tickets for status")
	}
	status.Stats.TotalTickets = len(allTickets)

	// Most recent intake across stored tickets
	var lastIntake time.Time
	for _, ticket := range allTickets {
		if ticket.Updated != "" {
			if ticketTime, err := time.Parse(time.RFC3339, ticket.Updated); err == nil {
				if ticketTime.After(lastIntake) {
					lastIntake = ticketTime
				}
			}
		}
	}
	if !lastIntake.IsZero() {
		status.Stats.LastIntake = lastIntake.Format("2006-01-02 15:04:05")
	} else {
		status.Stats.LastIntake = "Never"
	}

	if report, err := h.storage.LoadLastReport(); err == nil && report != nil {
		status.Stats.LastRun = report.GeneratedAt.Format("2006-01-02 15:04:05")
		status.Stats.LastRunID = report.RunID
	} else {
		status.Stats.LastRun = "Never"
	}

	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode status response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ConfigHandler returns system configuration
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	config := ConfigResponse{
		Analyzer: &h.config.Analyzer,
		Storage:  &h.config.Storage,
		Logging:  &h.config.Logging,
		Analysis: &h.config.Analysis,
		Reports:  &h.config.Reports,
	}

	if err := json.NewEncoder(w).Encode(config); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode config response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// MetricsHandler returns the latest report data, computing a fresh run when
// none has been stored yet
func (h *APIHandlers) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.storage.LoadLastReport()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load stored report")
	}

	if report == nil {
		report, err = h.analyzer.Run(r.URL.Query().Get("type"))
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to compute metrics")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode metrics response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// AnalyzeHandler triggers a metrics analysis run
func (h *APIHandlers) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	analysisType := r.URL.Query().Get("type")

	h.logger.Info().Str("analysis_type", analysisType).Msg("Analysis run requested")

	if h.wsHub != nil {
		h.wsHub.SendAnalysisUpdate("analysis_started", map[string]interface{}{
			"analysis_type": analysisType,
		})
	}

	report, err := h.analyzer.Run(analysisType)
	if err != nil {
		h.logger.Error().Err(err).Msg("Analysis run failed")

		if h.wsHub != nil {
			h.wsHub.SendAnalysisUpdate("analysis_failed", map[string]interface{}{
				"analysis_type": analysisType,
				"error":         err.Error(),
			})
		}

		response := AnalyzeResponse{
			Success: false,
			Message: "Analysis run failed",
			Error:   err.Error(),
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(response)
		return
	}

	if h.wsHub != nil {
		h.wsHub.SendAnalysisUpdate("analysis_complete", map[string]interface{}{
			"run_id":        report.RunID,
			"analysis_type": report.AnalysisType,
			"tickets":       report.TotalTickets,
			"sla_breaches":  report.SLABreaches,
		})
	}

	response := AnalyzeResponse{
		Success: true,
		Message: fmt.Sprintf("Analyzed %d tickets", report.TotalTickets),
		Report:  report,
	}

	json.NewEncoder(w).Encode(response)
}

// ReceiverHandler accepts ticket export payloads from the retrieval side
func (h *APIHandlers) ReceiverHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeReceiverError(w, http.StatusBadRequest, "Failed to read payload", err)
		return
	}

	transactionID := fmt.Sprintf("txn-%d", time.Now().UnixNano())

	tickets, err := h.parser.Parse(payload)
	if err != nil {
		h.logger.Error().Str("transaction_id", transactionID).Err(err).Msg("Failed to parse ticket payload")
		h.writeReceiverError(w, http.StatusBadRequest, "Invalid payload format", err)
		return
	}

	h.logger.Info().
		Str("transaction_id", transactionID).
		Int("tickets", len(tickets)).
		Msg("Received ticket payload")

	if h.wsHub != nil {
		h.wsHub.SendAnalysisUpdate("intake_started", map[string]interface{}{
			"transaction_id": transactionID,
			"tickets":        len(tickets),
		})
	}

	stored, err := h.storeTickets(tickets)
	if err != nil {
		h.logger.Error().
			Str("transaction_id", transactionID).
			Err(err).
			Msg("Failed to store tickets")

		if h.wsHub != nil {
			h.wsHub.SendAnalysisUpdate("intake_failed", map[string]interface{}{
				"transaction_id": transactionID,
				"error":          err.Error(),
			})
		}

		h.writeReceiverError(w, http.StatusInternalServerError, "Failed to store tickets", err)
		return
	}

	if h.wsHub != nil {
		h.wsHub.SendAnalysisUpdate("intake_success", map[string]interface{}{
			"transaction_id": transactionID,
			"tickets_added":  stored,
		})
	}

	response := ReceiverResponse{
		Success:       true,
		Message:       fmt.Sprintf("Stored %d ticket(s)", stored),
		Timestamp:     time.Now(),
		TransactionID: transactionID,
		TicketsAdded:  stored,
	}

	json.NewEncoder(w).Encode(response)
}

// storeTickets groups tickets by project and merges them into storage
func (h *APIHandlers) storeTickets(tickets []*models.TicketData) (int, error) {
	projectTickets := make(map[string]map[string]*models.TicketData)
	stored := 0

	for _, ticket := range tickets {
		projectKey := ticket.ProjectID
		if projectKey == "" {
			h.logger.Warn().Str("key", ticket.Key).Msg("Could not determine project for ticket")
			continue
		}

		if projectTickets[projectKey] == nil {
			existing, err := h.storage.LoadTickets(projectKey)
			if err != nil {
				projectTickets[projectKey] = make(map[string]*models.TicketData)
			} else {
				projectTickets[projectKey] = existing
			}
		}

		projectTickets[projectKey][ticket.Key] = ticket
		stored++
	}

	for projectKey, tickets := range projectTickets {
		if err := h.storage.SaveTickets(projectKey, tickets); err != nil {
			return stored, fmt.Errorf("failed to save tickets for %s: %w", projectKey, err)
		}
		h.logger.Info().
			Str("project", projectKey).
			Int("count", len(tickets)).
			Msg("Stored tickets for project")
	}

	return stored, nil
}

func (h *APIHandlers) writeReceiverError(w http.ResponseWriter, code int, message string, err error) {
	response := ReceiverResponse{
		Success:   false,
		Message:   message,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

func (h *APIHandlers) testDatabaseConnection() bool {
	_, err := h.storage.LoadAllTickets()
	return err == nil
}
