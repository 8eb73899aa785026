package services_test

import (
	"path/filepath"
	"testing"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/interfaces"
	"aktis-soc-metrics/internal/models"
	"aktis-soc-metrics/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) interfaces.Storage {
	t.Helper()

	dir := t.TempDir()
	store, err := services.NewStorage(&common.StorageConfig{
		DatabasePath: filepath.Join(dir, "test.db"),
		BackupDir:    filepath.Join(dir, "backups"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStorage_SaveAndLoadTickets(t *testing.T) {
	store := newTestStorage(t)

	tickets := map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC", Summary: "first", Status: "Open"},
		"SOC-2": {Key: "SOC-2", ProjectID: "SOC", Summary: "second", Status: "Done"},
	}
	require.NoError(t, store.SaveTickets("SOC", tickets))

	loaded, err := store.LoadTickets("SOC")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded["SOC-1"].Summary)
	assert.Equal(t, "Done", loaded["SOC-2"].Status)
}

func TestStorage_LoadTicketsScopedByProject(t *testing.T) {
	store := newTestStorage(t)

	require.NoError(t, store.SaveTickets("SOC", map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC"},
	}))
	require.NoError(t, store.SaveTickets("OPS", map[string]*models.TicketData{
		"OPS-1": {Key: "OPS-1", ProjectID: "OPS"},
	}))

	soc, err := store.LoadTickets("SOC")
	require.NoError(t, err)
	assert.Len(t, soc, 1)

	all, err := store.LoadAllTickets()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStorage_SaveMergesTickets(t *testing.T) {
	store := newTestStorage(t)

	require.NoError(t, store.SaveTickets("SOC", map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC", Status: "Open"},
	}))
	require.NoError(t, store.SaveTickets("SOC", map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC", Status: "Done"},
		"SOC-2": {Key: "SOC-2", ProjectID: "SOC"},
	}))

	loaded, err := store.LoadTickets("SOC")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Done", loaded["SOC-1"].Status)
}

func TestStorage_GetLastUpdate(t *testing.T) {
	store := newTestStorage(t)

	last, err := store.GetLastUpdate("SOC")
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, store.SaveTickets("SOC", map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC"},
	}))

	last, err = store.GetLastUpdate("SOC")
	require.NoError(t, err)
	assert.NotEmpty(t, last)
}

func TestStorage_ClearAllTickets(t *testing.T) {
	store := newTestStorage(t)

	require.NoError(t, store.SaveTickets("SOC", map[string]*models.TicketData{
		"SOC-1": {Key: "SOC-1", ProjectID: "SOC"},
	}))
	require.NoError(t, store.ClearAllTickets())

	all, err := store.LoadAllTickets()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStorage_ReportSnapshot(t *testing.T) {
	store := newTestStorage(t)

	report, err := store.LoadLastReport()
	require.NoError(t, err)
	assert.Nil(t, report)

	saved := &models.ReportData{
		RunID:        "run-1",
		AnalysisType: "all",
		TotalTickets: 7,
		ResolutionBreakdown: map[string]int{
			"true-positive": 3,
		},
	}
	require.NoError(t, store.SaveReport(saved))

	report, err = store.LoadLastReport()
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 7, report.TotalTickets)
	assert.Equal(t, 3, report.ResolutionBreakdown["true-positive"])

	// A later run replaces the snapshot
	require.NoError(t, store.SaveReport(&models.ReportData{RunID: "run-2"}))
	report, err = store.LoadLastReport()
	require.NoError(t, err)
	assert.Equal(t, "run-2", report.RunID)
}
