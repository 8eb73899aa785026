package metrics

import (
	"strings"
	"time"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/models"

	"github.com/ternarybob/arbor"
)

// timestampLayouts covers ISO-8601 with and without sub-second precision,
// plus the tracker's +0000 offset form without a colon.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
}

// Deriver turns raw tickets into per-ticket time metrics using the injected
// classification rules. It never mutates the raw ticket.
type Deriver struct {
	analysis *common.AnalysisConfig
	logger   arbor.ILogger
}

// DeriveReport aggregates what happened across a batch derivation: how many
// tickets produced a record and how many failed, counted per failure type.
type DeriveReport struct {
	Derived  int
	Failures map[common.ErrorType]int
}

func (r *DeriveReport) recordFailure(errType common.ErrorType) {
	if r.Failures == nil {
		r.Failures = make(map[common.ErrorType]int)
	}
	r.Failures[errType]++
}

// FailureCount returns the total number of failed tickets
func (r *DeriveReport) FailureCount() int {
	total := 0
	for _, count := range r.Failures {
		total += count
	}
	return total
}

func NewDeriver(analysis *common.AnalysisConfig, logger arbor.ILogger) *Deriver {
	return &Deriver{
		analysis: analysis,
		logger:   logger,
	}
}

// Derive computes the time metrics and classifications for one ticket.
// A ticket without a key yields (nil, error). Malformed timestamps yield a
// record with zero elapsed times alongside a timestamp error so the caller
// can count it; the record itself is still usable.
func (d *Deriver) Derive(ticket *models.TicketData) (*models.TicketMetrics, error) {
	if ticket == nil || ticket.Key == "" {
		return nil, common.NewDerivationError("missing_key", "ticket has no key field")
	}

	record := &models.TicketMetrics{
		Key:        ticket.Key,
		Summary:    ticket.Summary,
		Status:     ticket.Status,
		Priority:   ticket.Priority,
		Labels:     ticket.Labels,
		Components: ticket.Components,
	}

	record.AlertCategory = d.alertCategory(ticket.Summary)
	record.Severity = d.analysis.SeverityFor(ticket.Priority)
	record.EscalationCount = countEscalations(ticket.Changelog)
	record.ResolutionCategory = d.resolutionCategory(ticket.Status, ticket.Resolution)

	times, err := d.calculateTimes(ticket)
	if err != nil {
		// Zero elapsed times, SLA trivially unbroken. Not fatal to the batch.
		return record, err
	}

	record.TotalTimeHours = times.total
	record.DetectionTimeHours = times.detection
	record.ResolutionTimeHours = times.resolution
	record.CreatedAt = times.created
	record.SLABreach = times.total > d.analysis.SLAThresholdFor(record.Severity)

	return record, nil
}

// DeriveAll processes a batch, isolating per-ticket failures. Every failure
// is logged as a warning and counted by type; one bad ticket never aborts
// the batch.
func (d *Deriver) DeriveAll(tickets []*models.TicketData) ([]*models.TicketMetrics, *DeriveReport) {
	report := &DeriveReport{}
	records := make([]*models.TicketMetrics, 0, len(tickets))

	for _, ticket := range tickets {
		record, err := d.Derive(ticket)
		if err != nil {
			errType := common.ErrorTypeDerivation
			if e, ok := err.(*common.AnalyzerError); ok {
				errType = e.Type
			}
			report.recordFailure(errType)

			key := "unknown"
			if ticket != nil && ticket.Key != "" {
				key = ticket.Key
			}
			if d.logger != nil {
				d.logger.Warn().Str("ticket", key).Str("error_type", string(errType)).Msg("Ticket derivation failed")
			}
		}
		if record != nil {
			records = append(records, record)
			report.Derived++
		}
	}

	return records, report
}

type ticketTimes struct {
	total      float64
	detection  float64
	resolution float64
	created    time.Time
}

func (d *Deriver) calculateTimes(ticket *models.TicketData) (ticketTimes, error) {
	created, err := parseTimestamp(ticket.Created)
	if err != nil {
		return ticketTimes{}, common.NewTimestampError("bad_created", "unparseable creation timestamp").
			WithContext("value", ticket.Created).WithCause(err)
	}
	updated, err := parseTimestamp(ticket.Updated)
	if err != nil {
		return ticketTimes{}, common.NewTimestampError("bad_updated", "unparseable updated timestamp").
			WithContext("value", ticket.Updated).WithCause(err)
	}

	// Resolution instant falls back to last-updated for unresolved tickets
	resolved := updated
	if ticket.ResolutionDate != "" {
		resolved, err = parseTimestamp(ticket.ResolutionDate)
		if err != nil {
			return ticketTimes{}, common.NewTimestampError("bad_resolution", "unparseable resolution timestamp").
				WithContext("value", ticket.ResolutionDate).WithCause(err)
		}
	}

	times := ticketTimes{
		created: created,
		total:   resolved.Sub(created).Hours(),
	}

	firstAction, found, err := d.firstActionTime(ticket.Changelog)
	if err != nil {
		return ticketTimes{}, err
	}

	if found {
		times.detection = firstAction.Sub(created).Hours()
		times.resolution = resolved.Sub(firstAction).Hours()
	} else {
		times.detection = 0
		times.resolution = times.total
	}

	return times, nil
}

// firstActionTime scans the ordered change history for the first transition
// into the configured first-action status.
func (d *Deriver) firstActionTime(changelog []models.ChangeEvent) (time.Time, bool, error) {
	target := d.analysis.Lifecycle.FirstActionStatus
	for _, event := range changelog {
		if event.Field != "status" {
			continue
		}
		if strings.EqualFold(event.To, target) {
			ts, err := parseTimestamp(event.Created)
			if err != nil {
				return time.Time{}, false, common.NewTimestampError("bad_transition", "unparseable transition timestamp").
					WithContext("value", event.Created).WithCause(err)
			}
			return ts, true, nil
		}
	}
	return time.Time{}, false, nil
}

// alertCategory matches the summary against the configured keyword lists.
// Categories are tried in declaration order and the first match wins.
func (d *Deriver) alertCategory(summary string) string {
	summaryLower := strings.ToLower(summary)

	for _, category := range d.analysis.AlertCategories {
		if len(category.Keywords) == 0 {
			continue
		}
		for _, keyword := range category.Keywords {
			if keyword != "" && strings.Contains(summaryLower, strings.ToLower(keyword)) {
				return category.Name
			}
		}
	}
	return "general"
}

func (d *Deriver) resolutionCategory(status, resolution string) string {
	lifecycle := d.analysis.Lifecycle

	// Completed tickets map through the configured status->category table,
	// falling back to a slug of the status itself
	for _, completion := range lifecycle.CompletionStatuses {
		if strings.EqualFold(status, completion) {
			for _, mapping := range lifecycle.ResolutionMapping {
				if strings.EqualFold(mapping.Status, status) {
					return mapping.Category
				}
			}
			return slugify(status)
		}
	}

	if resolution != "" {
		for _, mapping := range lifecycle.ResolutionMapping {
			if strings.EqualFold(mapping.Status, resolution) {
				return mapping.Category
			}
		}
	}

	switch strings.ToLower(status) {
	case "done", "closed", "resolved":
		return "done"
	}

	return "open"
}

func countEscalations(changelog []models.ChangeEvent) int {
	count := 0
	for _, event := range changelog {
		if event.Field == "priority" {
			count++
		}
	}
	return count
}

func slugify(value string) string {
	return strings.ReplaceAll(strings.ToLower(value), " ", "-")
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
