// Package store persists extracted receipts in a local bbolt file and
// exports them as standalone JSON documents.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"hoadon/internal/logger"
	"hoadon/pkg/models"
)

var (
	invoicesBucket = []byte("invoices")

	// ErrNotFound is returned when no invoice exists under the given id.
	ErrNotFound = errors.New("invoice not found")
)

// Store is a bbolt-backed invoice store. One Store owns the database
// file; bbolt takes an exclusive lock, so open it once per process.
type Store struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open opens or creates the database file and ensures the bucket
// exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(invoicesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db, log: logger.WithComponent("store")}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a record under a fresh id and returns the stored form.
func (s *Store) Save(filename string, record *models.InvoiceRecord) (*models.StoredInvoice, error) {
	stored := &models.StoredInvoice{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(filename),
		Record:     *record,
		IngestedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(invoicesBucket).Put([]byte(stored.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}

	s.log.Info().
		Str("id", stored.ID).
		Str("filename", stored.Filename).
		Msg("Invoice saved")
	return stored, nil
}

// Get returns the invoice stored under id, or ErrNotFound.
func (s *Store) Get(id string) (*models.StoredInvoice, error) {
	var stored models.StoredInvoice
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(invoicesBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns every stored invoice in key order.
func (s *Store) List() ([]models.StoredInvoice, error) {
	var invoices []models.StoredInvoice
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(invoicesBucket).ForEach(func(_, data []byte) error {
			var stored models.StoredInvoice
			if err := json.Unmarshal(data, &stored); err != nil {
				return err
			}
			invoices = append(invoices, stored)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// Delete removes the invoice stored under id. Deleting an unknown id
// returns ErrNotFound.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(invoicesBucket)
		if bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// ExportJSON writes a stored invoice's record as a standalone
// <name>_structured.json document in dir, creating dir if needed. The
// document is human-readable UTF-8 so Vietnamese text reads back
// verbatim.
func ExportJSON(dir string, stored *models.StoredInvoice) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(stored.Filename, filepath.Ext(stored.Filename))
	path := filepath.Join(dir, base+"_structured.json")

	data, err := models.MarshalRecord(&stored.Record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
