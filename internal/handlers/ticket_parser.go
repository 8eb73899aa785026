package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/models"
)

// TicketParser converts issue-tracker export payloads into ticket records.
// It accepts the Jira REST search shape ({"issues": [...]}) as well as a
// bare array of issues.
type TicketParser struct{}

// NewTicketParser creates a new ticket payload parser
func NewTicketParser() *TicketParser {
	return &TicketParser{}
}

// Parse extracts tickets from a raw JSON payload
func (p *TicketParser) Parse(payload []byte) ([]*models.TicketData, error) {
	var envelope map[string]interface{}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if issues, ok := envelope["issues"].([]interface{}); ok {
			return p.parseIssues(issues)
		}
		if issues, ok := envelope["tickets"].([]interface{}); ok {
			return p.parseIssues(issues)
		}
		return nil, fmt.Errorf("payload has no issues array")
	}

	var issues []interface{}
	if err := json.Unmarshal(payload, &issues); err != nil {
		return nil, fmt.Errorf("payload is neither an issue envelope nor an issue array: %w", err)
	}
	return p.parseIssues(issues)
}

func (p *TicketParser) parseIssues(issues []interface{}) ([]*models.TicketData, error) {
	tickets := make([]*models.TicketData, 0, len(issues))

	for _, issueInterface := range issues {
		issueData, ok := issueInterface.(map[string]interface{})
		if !ok {
			continue
		}

		key, ok := issueData["key"].(string)
		if !ok || key == "" {
			continue
		}

		ticket := &models.TicketData{
			Key:       key,
			ProjectID: projectKeyFromIssueKey(key),
		}

		if url, ok := issueData["url"].(string); ok {
			ticket.URL = url
		}

		fields, _ := issueData["fields"].(map[string]interface{})
		if fields == nil {
			// Flat shape: fields inlined on the issue itself
			fields = issueData
		}
		p.extractFields(fields, ticket)

		if changelog, ok := issueData["changelog"].(map[string]interface{}); ok {
			ticket.Changelog = p.extractChangelog(changelog)
		}

		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

func (p *TicketParser) extractFields(fields map[string]interface{}, ticket *models.TicketData) {
	if summary, ok := fields["summary"].(string); ok {
		ticket.Summary = common.StripTags(summary)
	}
	if description, ok := fields["description"].(string); ok {
		ticket.Description = common.StripTags(description)
	}
	if created, ok := fields["created"].(string); ok {
		ticket.Created = created
	}
	if updated, ok := fields["updated"].(string); ok {
		ticket.Updated = updated
	}
	if resolutionDate, ok := fields["resolutiondate"].(string); ok {
		ticket.ResolutionDate = resolutionDate
	}

	ticket.IssueType = namedField(fields, "issuetype", "issue_type")
	ticket.Status = namedField(fields, "status")
	ticket.Priority = namedField(fields, "priority")
	ticket.Resolution = namedField(fields, "resolution")
	ticket.Reporter = personField(fields, "reporter")
	ticket.Assignee = personField(fields, "assignee")

	if labels, ok := fields["labels"].([]interface{}); ok {
		for _, label := range labels {
			if name, ok := label.(string); ok && name != "" {
				ticket.Labels = append(ticket.Labels, name)
			}
		}
	}
	if components, ok := fields["components"].([]interface{}); ok {
		for _, component := range components {
			switch c := component.(type) {
			case string:
				ticket.Components = append(ticket.Components, c)
			case map[string]interface{}:
				if name, ok := c["name"].(string); ok && name != "" {
					ticket.Components = append(ticket.Components, name)
				}
			}
		}
	}
}

// extractChangelog flattens Jira changelog histories into a linear event
// list, keeping the history order the payload supplied.
func (p *TicketParser) extractChangelog(changelog map[string]interface{}) []models.ChangeEvent {
	histories, ok := changelog["histories"].([]interface{})
	if !ok {
		return nil
	}

	var events []models.ChangeEvent
	for _, historyInterface := range histories {
		history, ok := historyInterface.(map[string]interface{})
		if !ok {
			continue
		}

		created, _ := history["created"].(string)

		items, ok := history["items"].([]interface{})
		if !ok {
			continue
		}

		for _, itemInterface := range items {
			item, ok := itemInterface.(map[string]interface{})
			if !ok {
				continue
			}

			event := models.ChangeEvent{Created: created}
			if field, ok := item["field"].(string); ok {
				event.Field = field
			}
			if from, ok := item["fromString"].(string); ok {
				event.From = from
			} else if from, ok := item["from"].(string); ok {
				event.From = from
			}
			if to, ok := item["toString"].(string); ok {
				event.To = to
			} else if to, ok := item["to"].(string); ok {
				event.To = to
			}

			if event.Field != "" {
				events = append(events, event)
			}
		}
	}

	return events
}

// namedField reads a field that is either a plain string or a Jira object
// with a "name" property, trying each key in order.
func namedField(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch value := fields[key].(type) {
		case string:
			return value
		case map[string]interface{}:
			if name, ok := value["name"].(string); ok {
				return name
			}
		}
	}
	return ""
}

// personField reads a user field that is either a plain string or a Jira
// user object.
func personField(fields map[string]interface{}, key string) string {
	switch value := fields[key].(type) {
	case string:
		return value
	case map[string]interface{}:
		if name, ok := value["displayName"].(string); ok {
			return name
		}
		if name, ok := value["name"].(string); ok {
			return name
		}
	}
	return ""
}

func projectKeyFromIssueKey(key string) string {
	if idx := strings.IndexByte(key, '-'); idx > 0 {
		return key[:idx]
	}
	return ""
}
