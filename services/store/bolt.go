package store

import (
	"encoding/binary"
	"encoding/json"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"sjsage522/hotdealbot/internal/deal"
	"sjsage522/hotdealbot/logger"
)

const (
	dealsBucket = "deals"     // itob(id) -> deal JSON
	urlsBucket  = "deal_urls" // url -> itob(id)
)

// BoltStore implements DealStore on top of an embedded BoltDB file. Bolt
// allows a single writer at a time, so the url uniqueness check and the
// insert happen inside one serialized transaction; two racing inserts for the
// same url cannot both succeed.
type BoltStore struct {
	db  *bolt.DB
	log *logger.Logger
}

// NewBoltStore opens (or creates) the database file and ensures the buckets
// exist.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(dealsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(urlsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, log: logger.ForStore()}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Exists reports whether a deal with the given URL has been persisted.
func (s *BoltStore) Exists(url string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(urlsBucket)).Get([]byte(url)) != nil
		return nil
	})
	return exists, err
}

// Insert persists a new deal unless its URL is already known.
func (s *BoltStore) Insert(url, title string, finalPrice int, totalScore float64, status deal.Status) (uint64, bool, error) {
	if !status.Valid() {
		return 0, false, ErrInvalidStatus
	}

	var id uint64
	inserted := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		urls := tx.Bucket([]byte(urlsBucket))
		if urls.Get([]byte(url)) != nil {
			// Duplicate url: reject, keep the stored record untouched.
			return nil
		}

		deals := tx.Bucket([]byte(dealsBucket))
		seq, err := deals.NextSequence()
		if err != nil {
			return err
		}

		d := deal.Deal{
			ID:         seq,
			URL:        url,
			Title:      title,
			FinalPrice: finalPrice,
			TotalScore: totalScore,
			Status:     status,
			CreatedAt:  time.Now().UTC(),
		}

		data, err := json.Marshal(d)
		if err != nil {
			return err
		}

		if err := deals.Put(itob(seq), data); err != nil {
			return err
		}
		if err := urls.Put([]byte(url), itob(seq)); err != nil {
			return err
		}

		id = seq
		inserted = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if !inserted {
		s.log.Warn().Str("url", url).Msg("Duplicate deal insertion blocked")
	}
	return id, inserted, nil
}

// SetStatus updates the status of an existing deal. Any stored status may
// transition to any valid status; the reviewer is allowed to override.
func (s *BoltStore) SetStatus(id uint64, status deal.Status) (bool, error) {
	if !status.Valid() {
		s.log.Error().Str("status", string(status)).Msg("Invalid status value")
		return false, nil
	}

	updated := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		deals := tx.Bucket([]byte(dealsBucket))
		data := deals.Get(itob(id))
		if data == nil {
			return nil
		}

		var d deal.Deal
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}

		d.Status = status
		next, err := json.Marshal(d)
		if err != nil {
			return err
		}

		updated = true
		return deals.Put(itob(id), next)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// ListByStatus returns all deals with the given status, newest first by
// CreatedAt.
func (s *BoltStore) ListByStatus(status deal.Status) ([]deal.Deal, error) {
	var deals []deal.Deal

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(dealsBucket)).ForEach(func(k, v []byte) error {
			var d deal.Deal
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			if d.Status == status {
				deals = append(deals, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(deals, func(i, j int) bool {
		if deals[i].CreatedAt.Equal(deals[j].CreatedAt) {
			return deals[i].ID > deals[j].ID
		}
		return deals[i].CreatedAt.After(deals[j].CreatedAt)
	})

	return deals, nil
}

// itob returns an 8-byte big-endian representation of v, so bucket keys sort
// in insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
