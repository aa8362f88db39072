// Package contentdb provides the content store: a durable map from opaque
// content keys to content bytes, owned exclusively by the storage engine.
package contentdb

import (
	"context"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"

	"PortalDHT/internal/domain"
	"PortalDHT/internal/logger"
)

// Store is a badger backed content store rooted at a directory.
type Store struct {
	db  *badgerdb.DB
	lgr logger.Logger
}

type Option func(*Store)

// WithLogger sets the store logger. Badger's own chatter is forwarded
// through it under the "badger" component.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.lgr = l
		}
	}
}

// New opens (or creates) the content store under dir.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{lgr: &logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	bopts := badgerdb.DefaultOptions(dir)
	bopts.Logger = badgerLogger{lgr: s.lgr.Named("badger")}
	db, err := badgerdb.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("contentdb: open %s: %w", dir, err)
	}
	s.db = db
	return s, nil
}

// Put writes (key, value), overwriting any previous value for the key.
func (s *Store) Put(ctx context.Context, key domain.ContentKey, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("contentdb: put %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, or (nil, nil) when the key is
// absent.
func (s *Store) Get(ctx context.Context, key domain.ContentKey) ([]byte, error) {
	var valCopy []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("contentdb: get %s: %w", key, err)
	}
	return valCopy, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key domain.ContentKey) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("contentdb: delete %s: %w", key, err)
	}
	return nil
}

// SizeBytes reports the store's own usage accounting: the current size
// of the LSM tree plus the value log.
func (s *Store) SizeBytes() uint64 {
	lsm, vlog := s.db.Size()
	return uint64(lsm) + uint64(vlog)
}

// Close releases the underlying database. The store must not be used
// afterwards.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("contentdb: close: %w", err)
	}
	return nil
}

// badgerLogger forwards badger's printf style logging to the structured
// node logger. Badger terminates its messages with a newline.
type badgerLogger struct {
	lgr logger.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.lgr.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.lgr.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.lgr.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.lgr.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
