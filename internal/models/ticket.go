package models

// TicketData represents a raw issue-tracker ticket as supplied by the
// retrieval side, including the change history needed for lifecycle metrics
type TicketData struct {
	Key            string   `json:"key"`
	ProjectID      string   `json:"project_id"`
	URL            string   `json:"url"`
	Summary        string   `json:"summary"`
	Description    string   `json:"description"`
	IssueType      string   `json:"issue_type"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	Created        string   `json:"created"`
	Updated        string   `json:"updated"`
	Resolution     string   `json:"resolution,omitempty"`
	ResolutionDate string   `json:"resolution_date,omitempty"`
	Reporter       string   `json:"reporter"`
	Assignee       string   `json:"assignee"`
	Labels         []string `json:"labels"`
	Components     []string `json:"components"`

	// Changelog holds field-change events in the order they occurred
	Changelog []ChangeEvent `json:"changelog,omitempty"`

	Hash string `json:"hash"`
}

// ChangeEvent represents a single field change from the ticket history
type ChangeEvent struct {
	Field   string `json:"field"`
	From    string `json:"from"`
	To      string `json:"to"`
	Created string `json:"created"`
}

// ProjectData represents an issue-tracker project
type ProjectData struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Updated     string `json:"updated"`
}
