package metrics_test

import (
	"testing"

	"aktis-soc-metrics/internal/metrics"
	"aktis-soc-metrics/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	good := &models.TicketMetrics{Key: "SOC-1", DetectionTimeHours: 2, ResolutionTimeHours: 4, TotalTimeHours: 6}

	tests := []struct {
		name        string
		records     []*models.TicketMetrics
		wantValid   int
		wantDropped int
	}{
		{
			name:        "all valid",
			records:     []*models.TicketMetrics{good},
			wantValid:   1,
			wantDropped: 0,
		},
		{
			name:        "nil record dropped",
			records:     []*models.TicketMetrics{good, nil},
			wantValid:   1,
			wantDropped: 1,
		},
		{
			name: "negative detection dropped",
			records: []*models.TicketMetrics{
				{Key: "SOC-2", DetectionTimeHours: -1, TotalTimeHours: 5},
			},
			wantValid:   0,
			wantDropped: 1,
		},
		{
			name: "detection exceeding total dropped",
			records: []*models.TicketMetrics{
				{Key: "SOC-3", DetectionTimeHours: 10, ResolutionTimeHours: 1, TotalTimeHours: 5},
			},
			wantValid:   0,
			wantDropped: 1,
		},
		{
			name: "resolution exceeding total dropped",
			records: []*models.TicketMetrics{
				{Key: "SOC-4", DetectionTimeHours: 1, ResolutionTimeHours: 10, TotalTimeHours: 5},
			},
			wantValid:   0,
			wantDropped: 1,
		},
		{
			name: "zero times are valid",
			records: []*models.TicketMetrics{
				{Key: "SOC-5"},
			},
			wantValid:   1,
			wantDropped: 0,
		},
		{
			name:        "empty input",
			records:     nil,
			wantValid:   0,
			wantDropped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, dropped := metrics.Validate(tt.records, nil)
			assert.Len(t, valid, tt.wantValid)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}
