package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Listen   string `yaml:"listen"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Storage struct {
		Type           string `yaml:"type"`
		LocalPath      string `yaml:"local_path"`
		DataSourceName string `yaml:"data_source_name"`
		PebblePath     string `yaml:"pebble_path"`
		S3Bucket       string `yaml:"s3_bucket"`
		S3Prefix       string `yaml:"s3_prefix"`
		RedisAddr      string `yaml:"redis_addr"`
		RedisPassword  string `yaml:"redis_password"`
		RedisPrefix    string `yaml:"redis_prefix"`
		PostgresDSN    string `yaml:"postgres_dsn"`
	} `yaml:"storage"`
	Sweep struct {
		Cron string `yaml:"cron"`
	} `yaml:"sweep"`
	Likes struct {
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
		IPRPS   float64 `yaml:"ip_rps"`
		IPBurst int     `yaml:"ip_burst"`
	} `yaml:"likes"`
	Canvas struct {
		Width       int           `yaml:"width"`
		Height      int           `yaml:"height"`
		Background  string        `yaml:"background"`
		IdleTimeout time.Duration `yaml:"idle_timeout"`
	} `yaml:"canvas"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	var c Config
	c.Server.Listen = ":3002"
	c.Server.LogLevel = "info"
	c.Storage.Type = "memory"
	c.Storage.LocalPath = "./data"
	c.Storage.DataSourceName = "hatesaway.db"
	c.Storage.PebblePath = "./data/pebble"
	c.Storage.RedisPrefix = "hatesaway:"
	c.Likes.RPS = 5
	c.Likes.Burst = 10
	c.Likes.IPRPS = 20
	c.Likes.IPBurst = 40
	c.Canvas.Width = 800
	c.Canvas.Height = 600
	c.Canvas.Background = "#ffffff"
	c.Canvas.IdleTimeout = 30 * time.Minute
	return c
}

// Load merges defaults, the optional YAML file at path, a .env file and
// the process environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(c *Config) error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &c.Server.Listen)
	str("LOG_LEVEL", &c.Server.LogLevel)
	str("STORAGE_TYPE", &c.Storage.Type)
	str("LOCAL_STORAGE_PATH", &c.Storage.LocalPath)
	str("DATA_SOURCE_NAME", &c.Storage.DataSourceName)
	str("PEBBLE_PATH", &c.Storage.PebblePath)
	str("S3_BUCKET_NAME", &c.Storage.S3Bucket)
	str("S3_PREFIX", &c.Storage.S3Prefix)
	str("REDIS_ADDR", &c.Storage.RedisAddr)
	str("REDIS_PASSWORD", &c.Storage.RedisPassword)
	str("REDIS_PREFIX", &c.Storage.RedisPrefix)
	str("POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("SWEEP_CRON", &c.Sweep.Cron)
	str("CANVAS_BACKGROUND", &c.Canvas.Background)

	if v := os.Getenv("LIKE_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LIKE_RPS %q: %w", v, err)
		}
		c.Likes.RPS = rps
	}
	if v := os.Getenv("LIKE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LIKE_BURST %q: %w", v, err)
		}
		c.Likes.Burst = burst
	}
	if v := os.Getenv("LIKE_IP_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LIKE_IP_RPS %q: %w", v, err)
		}
		c.Likes.IPRPS = rps
	}
	if v := os.Getenv("LIKE_IP_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LIKE_IP_BURST %q: %w", v, err)
		}
		c.Likes.IPBurst = burst
	}
	if v := os.Getenv("CANVAS_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CANVAS_IDLE_TIMEOUT %q: %w", v, err)
		}
		c.Canvas.IdleTimeout = d
	}
	return nil
}
