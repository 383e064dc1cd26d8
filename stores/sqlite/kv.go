package sqlite

import (
	"context"
	"database/sql"
	"log"

	"github.com/sirupsen/logrus"
)

type kvStore struct {
	db *sql.DB
}

// NewKVStore opens (or creates) the database and its kv table.
func NewKVStore(dataSourceName string) *kvStore {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	kvTableStmt := `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);`
	if _, err = db.Exec(kvTableStmt); err != nil {
		log.Fatalf("failed to create kv table: %v", err)
	}

	return &kvStore{db}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	log := logrus.WithField("key", key)
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("Key not present")
			return "", false, nil
		}
		log.WithError(err).Error("Failed to read value")
		return "", false, err
	}
	log.Debug("Value read")
	return value, true, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	log := logrus.WithFields(logrus.Fields{
		"key":         key,
		"data_length": len(value),
	})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		log.WithError(err).Error("Failed to write value")
		return err
	}
	log.Debug("Value written")
	return nil
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		logrus.WithField("key", key).WithError(err).Error("Failed to remove value")
		return err
	}
	return nil
}

func (s *kvStore) Close() error {
	return s.db.Close()
}
