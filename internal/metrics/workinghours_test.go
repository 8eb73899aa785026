package metrics_test

import (
	"testing"

	"aktis-soc-metrics/internal/metrics"

	"github.com/stretchr/testify/assert"
)

func TestToWorkingHours(t *testing.T) {
	tests := []struct {
		name          string
		calendarHours float64
		hoursPerDay   int
		daysPerWeek   int
		want          float64
	}{
		{"one calendar day at 8x5", 24, 8, 5, 24.0 / 24 * 5.0 / 7 * 8},
		{"one calendar week at 8x5", 168, 8, 5, 40},
		{"24/7 schedule is identity", 24, 24, 7, 24},
		{"zero hours", 0, 8, 5, 0},
		{"negative hours clamp to zero", -12, 8, 5, 0},
		{"zero hours per day", 24, 0, 5, 0},
		{"zero days per week", 24, 8, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.ToWorkingHours(tt.calendarHours, tt.hoursPerDay, tt.daysPerWeek)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
