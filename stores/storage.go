package stores

import (
	"fmt"

	"hatesaway-server/config"
	"hatesaway-server/core"
	"hatesaway-server/stores/aws"
	"hatesaway-server/stores/filesystem"
	"hatesaway-server/stores/memory"
	"hatesaway-server/stores/pebble"
	"hatesaway-server/stores/postgres"
	"hatesaway-server/stores/redis"
	"hatesaway-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore builds the storage port selected by cfg.Storage.Type.
func GetStore(cfg config.Config) (core.KVStore, error) {
	sc := cfg.Storage
	var store core.KVStore

	storageField := logrus.Fields{
		"storageType": sc.Type,
	}

	switch sc.Type {
	case "filesystem":
		storageField["basePath"] = sc.LocalPath
		store = filesystem.NewKVStore(sc.LocalPath)
	case "sqlite":
		storageField["dataSourceName"] = sc.DataSourceName
		storageField["cgo"] = sqlite.CGOEnabled
		store = sqlite.NewKVStore(sc.DataSourceName)
	case "pebble":
		storageField["path"] = sc.PebblePath
		store = pebble.NewKVStore(sc.PebblePath)
	case "s3":
		if sc.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME must be set for s3 storage type")
		}
		storageField["bucketName"] = sc.S3Bucket
		store = aws.NewKVStore(sc.S3Bucket, sc.S3Prefix)
	case "redis":
		storageField["addr"] = sc.RedisAddr
		s, err := redis.NewKVStore(sc.RedisAddr, sc.RedisPassword, sc.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = s
	case "postgres":
		s, err := postgres.NewKVStore(sc.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = s
	default:
		store = memory.NewKVStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
