package gallery

import (
	"context"
	"encoding/json"
	"fmt"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

// load decodes the JSON collection stored under key into out. A missing key,
// an unavailable store or a corrupt value all leave out empty.
func load[T any](ctx context.Context, kv core.KVStore, key string, out *[]T) error {
	*out = nil
	if !core.Available(kv) {
		return nil
	}

	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to read collection")
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !found || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Warn("Malformed collection, treating as empty")
		*out = nil
	}
	return nil
}

func save[T any](ctx context.Context, kv core.KVStore, key string, items []T) error {
	if !core.Available(kv) {
		return nil
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to write collection")
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
