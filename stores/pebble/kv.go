package pebble

import (
	"context"
	"errors"
	"log"

	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"
)

type kvStore struct {
	db *pebble.DB
}

// NewKVStore opens (or creates) a Pebble database at path.
func NewKVStore(path string) *kvStore {
	logrus.WithField("path", path).Info("Opening pebble db")
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Fatalf("failed to open pebble db: %v", err)
	}
	return &kvStore{db: db}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	log := logrus.WithField("key", key)
	v, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			log.Debug("Key not present")
			return "", false, nil
		}
		log.WithError(err).Error("Failed to read value")
		return "", false, err
	}
	// v is only valid until closer.Close.
	value := string(v)
	if err := closer.Close(); err != nil {
		log.WithError(err).Warn("Failed to release pebble value")
	}
	return value, true, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":         key,
			"data_length": len(value),
		}).WithError(err).Error("Failed to write value")
		return err
	}
	return nil
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		logrus.WithField("key", key).WithError(err).Error("Failed to remove value")
		return err
	}
	return nil
}

func (s *kvStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	logrus.Info("Pebble db closed")
	return nil
}
