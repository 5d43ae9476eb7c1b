// Package history archives finished inspection reports in a local bbolt
// database. The discovery core never writes here; the service shell
// saves each report after handoff and the history endpoint reads them
// back, newest first.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/arwscan/arwscan/internal/model"
)

const (
	bucketReports = "reports"
	bucketByTime  = "reports_by_time"
)

// Store wraps a bbolt database for report persistence.
type Store struct {
	db *bbolt.DB
}

// NewStore opens a bbolt database at the given path and initializes the
// required buckets.
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketReports)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketByTime)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport persists one report, keyed by its ID, plus a time-ordered
// index entry so Recent can walk newest-first.
func (s *Store) SaveReport(report *model.InspectionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(bucketReports)).Put([]byte(report.ID), data); err != nil {
			return err
		}
		timeKey := report.InspectedAt.UTC().Format(time.RFC3339Nano) + "|" + report.ID
		return tx.Bucket([]byte(bucketByTime)).Put([]byte(timeKey), []byte(report.ID))
	})
}

// Recent returns up to limit reports, most recently inspected first.
func (s *Store) Recent(limit int) ([]*model.InspectionReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	var reports []*model.InspectionReport
	err := s.db.View(func(tx *bbolt.Tx) error {
		byTime := tx.Bucket([]byte(bucketByTime)).Cursor()
		byID := tx.Bucket([]byte(bucketReports))

		for k, id := byTime.Last(); k != nil && len(reports) < limit; k, id = byTime.Prev() {
			data := byID.Get(id)
			if data == nil {
				continue
			}
			var report model.InspectionReport
			if err := json.Unmarshal(data, &report); err != nil {
				return fmt.Errorf("decode report %s: %w", id, err)
			}
			reports = append(reports, &report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
