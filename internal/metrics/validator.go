package metrics

import (
	"aktis-soc-metrics/internal/models"

	"github.com/ternarybob/arbor"
)

// Validate filters a batch of derived records down to those with internally
// consistent time fields. Nil entries (failed derivations) and records with
// negative times or detection/resolution exceeding total are dropped. The
// drop count is returned and logged; an empty result is a valid outcome.
func Validate(records []*models.TicketMetrics, logger arbor.ILogger) ([]*models.TicketMetrics, int) {
	valid := make([]*models.TicketMetrics, 0, len(records))
	dropped := 0

	for _, record := range records {
		if record == nil {
			dropped++
			continue
		}
		if record.DetectionTimeHours < 0 ||
			record.ResolutionTimeHours < 0 ||
			record.TotalTimeHours < 0 ||
			record.DetectionTimeHours > record.TotalTimeHours ||
			record.ResolutionTimeHours > record.TotalTimeHours {
			dropped++
			continue
		}
		valid = append(valid, record)
	}

	if dropped > 0 && logger != nil {
		logger.Warn().Int("dropped", dropped).Int("valid", len(valid)).Msg("Discarded tickets with invalid time data")
	}

	return valid, dropped
}
