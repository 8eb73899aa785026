package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "aktis-soc-metrics/internal/common"
	. "aktis-soc-metrics/internal/interfaces"

	"aktis-soc-metrics/internal/models"

	bolt "go.etcd.io/bbolt"
)

const (
	ticketsBucket  = "tickets"
	metadataBucket = "metadata"
	reportsBucket  = "reports"
	lastUpdateKey  = "last_update"
	lastReportKey  = "last_report"
)

type storage struct {
	db     *bolt.DB
	config *StorageConfig
}

func NewStorage(config *StorageConfig) (Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if config.BackupDir != "" {
		if err := os.MkdirAll(config.BackupDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ticketsBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(reportsBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *storage) SaveTickets(projectKey string, tickets map[string]*models.TicketData) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ticketsBucket))
		now := time.Now()

		for _, ticket := range tickets {
			key := []byte(fmt.Sprintf("%s:%s", projectKey, ticket.Key))

			data, err := json.Marshal(ticket)
			if err != nil {
				return fmt.Errorf("failed to marshal ticket %s: %w", ticket.Key, err)
			}

			if err := bucket.Put(key, data); err != nil {
				return fmt.Errorf("failed to save ticket %s: %w", ticket.Key, err)
			}
		}

		metaBucket := tx.Bucket([]byte(metadataBucket))
		updateKey := []byte(fmt.Sprintf("%s:%s", projectKey, lastUpdateKey))
		lastUpdateData, _ := now.MarshalBinary()
		return metaBucket.Put(updateKey, lastUpdateData)
	})
}

func (s *storage) LoadTickets(projectKey string) (map[string]*models.TicketData, error) {
	tickets := make(map[string]*models.TicketData)

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ticketsBucket))
		prefix := []byte(fmt.Sprintf("%s:", projectKey))

		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix); k, v = c.Next() {
			var ticket models.TicketData
			if err := json.Unmarshal(v, &ticket); err != nil {
				continue
			}
			tickets[ticket.Key] = &ticket
		}

		return nil
	})

	return tickets, err
}

func (s *storage) LoadAllTickets() (map[string]*models.TicketData, error) {
	tickets := make(map[string]*models.TicketData)

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ticketsBucket))

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ticket models.TicketData
			if err := json.Unmarshal(v, &ticket); err != nil {
				continue
			}
			tickets[ticket.Key] = &ticket
		}

		return nil
	})

	return tickets, err
}

func (s *storage) ClearAllTickets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(ticketsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(ticketsBucket))
		return err
	})
}

func (s *storage) GetLastUpdate(projectKey string) (string, error) {
	var lastUpdate time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(metadataBucket))
		key := []byte(fmt.Sprintf("%s:%s", projectKey, lastUpdateKey))
		data := metaBucket.Get(key)

		if data == nil {
			return nil
		}

		return lastUpdate.UnmarshalBinary(data)
	})

	if err != nil {
		return "", err
	}

	if lastUpdate.IsZero() {
		return "", nil
	}

	return lastUpdate.Format("2006-01-02 15:04"), nil
}

// SaveReport keeps the latest run's report data so the web interface can
// serve it without recomputing.
func (s *storage) SaveReport(report *models.ReportData) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.RunID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportsBucket))
		return bucket.Put([]byte(lastReportKey), data)
	})
}

func (s *storage) LoadLastReport() (*models.ReportData, error) {
	var report *models.ReportData

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(reportsBucket))
		data := bucket.Get([]byte(lastReportKey))
		if data == nil {
			return nil
		}

		var r models.ReportData
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		report = &r
		return nil
	})

	return report, err
}
