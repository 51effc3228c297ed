package store

import (
	"encoding/binary"
	"errors"

	bolt "go.etcd.io/bbolt"
)

// ErrNoHistory is returned by History when no history has been saved.
var ErrNoHistory = errors.New("no saved history")

const bucketHistory = "history"

var (
	keyHistoryData  = []byte("data")
	keyHistoryCount = []byte("count")
)

func init() {
	initDB["initialize history table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketHistory))
		return err
	}
}

// History returns a copy of the saved history region.
func (s *dbStore) History() ([]byte, int, error) {
	var (
		data []byte
		n    int
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		v, c := b.Get(keyHistoryData), b.Get(keyHistoryCount)
		if v == nil || len(c) != 4 {
			return ErrNoHistory
		}
		// Values are only valid inside the transaction.
		data = append([]byte(nil), v...)
		n = int(binary.LittleEndian.Uint32(c))
		return nil
	})
	return data, n, err
}

// SetHistory replaces the saved history region.
func (s *dbStore) SetHistory(data []byte, n int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		c := make([]byte, 4)
		binary.LittleEndian.PutUint32(c, uint32(n))
		if err := b.Put(keyHistoryData, data); err != nil {
			return err
		}
		return b.Put(keyHistoryCount, c)
	})
}
