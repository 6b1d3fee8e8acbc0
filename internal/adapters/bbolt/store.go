// Package bbolt implements the ports.History ledger using bbolt (embedded B+ tree).
// Each module path gets its own top-level bucket holding JSON run records keyed
// by start time and run id. Writes are transactional: a crash mid-write cannot
// corrupt previously committed runs.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/moebuild/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Store implements ports.History backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
// A second process holding the database makes Open fail after one second.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a finished run under its module path.
func (s *Store) Append(rec *ports.RunRecord) error {
	if rec == nil {
		return errors.New("nil run record")
	}
	if rec.ModulePath == "" || rec.ID == "" {
		return errors.New("run record needs a module path and an id")
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rec.ModulePath))
		if err != nil {
			return err
		}
		return b.Put(recordKey(rec), data)
	})
}

// List returns up to limit runs for a module, newest first.
// A limit of zero or less returns every run. An unknown module yields nil.
func (s *Store) List(modulePath string, limit int) ([]*ports.RunRecord, error) {
	var out []*ports.RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(modulePath))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k[stampSize:], err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Modules returns every module path with recorded runs.
func (s *Store) Modules() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	return out, err
}

// Prune drops a module's runs older than before and returns how many went.
func (s *Store) Prune(modulePath string, before time.Time) (int, error) {
	n := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(modulePath))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.First() {
			at, err := keyTime(k)
			if err != nil {
				return err
			}
			if !at.Before(before) {
				break
			}
			if err := c.Delete(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// DeleteModule removes all runs of a module. Missing modules are not an error.
func (s *Store) DeleteModule(modulePath string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(modulePath))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

var _ ports.History = (*Store)(nil)
