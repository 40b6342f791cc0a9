// Package profile persists a saved booking profile: the defaults a user does
// not want to retype per run. The record is read-only input to the booking
// core; the flow never writes it back.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// recordKey is the single profile slot. One profile per store.
var recordKey = []byte("profile:default")

// ErrNotFound means no profile has been saved yet.
var ErrNotFound = errors.New("no saved profile")

// Record holds a user's booking defaults. Station fields hold display or
// symbolic names, time is HH:MM; both are resolved by the config layer, not
// here.
type Record struct {
	StartStation string         `json:"start_station"`
	DestStation  string         `json:"dest_station"`
	OutboundTime string         `json:"outbound_time"`
	Tickets      map[string]int `json:"tickets"`
	PersonalID   string         `json:"personal_id"`
	Phone        string         `json:"phone,omitempty"`
	Email        string         `json:"email,omitempty"`
	// PassengerIDs are predefined national IDs for discount-fare passengers,
	// in slot order. They take precedence over interactive prompts.
	PassengerIDs []string `json:"passenger_ids,omitempty"`
}

// Store is a badger-backed profile store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores the record, replacing any previous profile.
func (s *Store) Save(record Record) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey, encoded)
	})
	if err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// Load returns the saved record, or ErrNotFound.
func (s *Store) Load() (Record, error) {
	var record Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load profile: %w", err)
	}
	return record, nil
}

// Delete removes the saved record. Deleting a missing profile is not an
// error.
func (s *Store) Delete() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey)
	})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
