// Package store persists console state between runs in a bbolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.bootcon.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// Store is the persistent storage of the console.
type Store interface {
	// History returns the saved history region and its entry count.
	History() (data []byte, n int, err error)
	SetHistory(data []byte, n int) error

	SharedVar(name string) (string, error)
	SetSharedVar(name, value string) error
	DelSharedVar(name string) error

	Close() error
}

// initDB holds the functions that set up the buckets, keyed by description.
var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database at dbname, creating it if needed.
func NewStore(dbname string) (Store, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a Store on an open database.
func NewStoreFromDB(db *bolt.DB) (Store, error) {
	logger.Println("initializing store")
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &dbStore{db}, nil
}

func (s *dbStore) Close() error { return s.db.Close() }
