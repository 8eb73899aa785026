package interfaces

import (
	"context"

	"aktis-soc-metrics/internal/models"
)

type Storage interface {
	SaveTickets(projectKey string, tickets map[string]*models.TicketData) error
	LoadTickets(projectKey string) (map[string]*models.TicketData, error)
	LoadAllTickets() (map[string]*models.TicketData, error)
	ClearAllTickets() error
	GetLastUpdate(projectKey string) (string, error)
	SaveReport(report *models.ReportData) error
	LoadLastReport() (*models.ReportData, error)
	Close() error
}

// Analyzer runs a full metrics pass over the stored tickets and returns the
// assembled report data.
type Analyzer interface {
	Run(analysisType string) (*models.ReportData, error)
	AnalysisTypes() []string
}

type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
