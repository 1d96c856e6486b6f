package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "meeting:"

// Store keeps meetings in an embedded badger database, one JSON value per key "meeting:{id}".
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the database at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", path, err)
	}
	return New(db, log), nil
}

func New(db *badger.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, id string) (*domain.Meeting, error) {
	var m domain.Meeting
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", id, err)
	}
	return &m, nil
}

func (s *Store) Create(_ context.Context, m *domain.Meeting) error {
	val, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meeting %s: %w", m.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(m.ID))
		switch {
		case err == nil:
			return fmt.Errorf("meeting %s: %w", m.ID, domain.ErrAlreadyExists)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key(m.ID), val)
	})
	if errors.Is(err, badger.ErrConflict) {
		// a concurrent create of the same key won the transaction
		return fmt.Errorf("meeting %s: %w", m.ID, domain.ErrAlreadyExists)
	}
	return err
}

func (s *Store) Update(_ context.Context, m *domain.Meeting) error {
	val, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meeting %s: %w", m.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(m.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrMeetingNotFound
			}
			return err
		}
		s.log.Debug("badger update meeting", "id", m.ID, "version", m.Version)
		return txn.Set(key(m.ID), val)
	})
}

func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}
