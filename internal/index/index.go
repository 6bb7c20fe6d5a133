// Package index keeps a bbolt database of the launch entries written by
// scans, keyed by link path.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketLinks = []byte("links")

// Record describes one materialized launch entry.
type Record struct {
	Link     string `json:"link"`
	Package  string `json:"package"`
	Document string `json:"document"`
	Platform string `json:"platform"`
	Section  string `json:"section"`
	Title    string `json:"title,omitempty"`
}

// Index is a bbolt-backed store of Records
type Index struct {
	db *bbolt.DB
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
	// bbolt mmaps a real file, so the index bypasses afero.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLinks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Index{db: db}, nil
}

// Put stores r, replacing any record for the same link.
func (ix *Index) Put(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return ix.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLinks).Put([]byte(r.Link), data)
	})
}

// Get returns the record for link, or nil when there is none.
func (ix *Index) Get(link string) (*Record, error) {
	var rec *Record
	err := ix.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLinks).Get([]byte(link))
		if data == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every record ordered by link path.
func (ix *Index) All() ([]Record, error) {
	var records []Record
	err := ix.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLinks).ForEach(func(k, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}
