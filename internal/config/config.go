package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	minUploadBytes = 1 << 10
	maxUploadBytes = 50 << 20
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Submission handling.
	MaxUploadBytes        int64
	ThumbnailMaxDimension int
	MaxImagePixels        int
	VerifyDelay           time.Duration
	VerifyCacheSize       int

	// Sessions.
	SessionCapacity int
	SessionCookie   string
	SeedDemo        bool

	// SubmissionFormURL replaces the native form with a link when set.
	SubmissionFormURL string

	// Event feed configuration.
	FeedEnabled        bool
	KafkaBrokers       []string
	KafkaTopic         string
	FeedQueueSize      int
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	verifyDelay, err := time.ParseDuration(sharedcfg.EnvOrDefault("VERIFY_DELAY", "1s"))
	if err != nil || verifyDelay < 0 {
		return nil, errors.New("invalid VERIFY_DELAY")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	maxUpload, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload < minUploadBytes || maxUpload > maxUploadBytes {
		return nil, errors.New("invalid MAX_UPLOAD_BYTES: must be 1024-52428800")
	}

	thumbDim, err := parsePositiveInt("THUMBNAIL_MAX_DIMENSION", 640)
	if err != nil {
		return nil, err
	}
	maxPixels, err := parsePositiveInt("MAX_IMAGE_PIXELS", 24_000_000)
	if err != nil {
		return nil, err
	}
	verifyCacheSize, err := parsePositiveInt("VERIFY_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	sessionCapacity, err := parsePositiveInt("SESSION_CAPACITY", 10000)
	if err != nil {
		return nil, err
	}
	queueSize, err := parsePositiveInt("FEED_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	seedDemo := true
	if v := os.Getenv("SEED_DEMO"); v != "" {
		seedDemo = v == "true"
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	feedEnabled := len(brokers) > 0
	if v := os.Getenv("FEED_ENABLED"); v != "" {
		feedEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MaxUploadBytes:        maxUpload,
		ThumbnailMaxDimension: thumbDim,
		MaxImagePixels:        maxPixels,
		VerifyDelay:           verifyDelay,
		VerifyCacheSize:       verifyCacheSize,

		SessionCapacity: sessionCapacity,
		SessionCookie:   sharedcfg.EnvOrDefault("SESSION_COOKIE", "bugwatch_session"),
		SeedDemo:        seedDemo,

		SubmissionFormURL: os.Getenv("SUBMISSION_FORM_URL"),

		FeedEnabled:        feedEnabled,
		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "bug-sightings"),
		FeedQueueSize:      queueSize,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.SubmissionFormURL != "" && !isHTTPURL(cfg.SubmissionFormURL) {
		return nil, errors.New("invalid SUBMISSION_FORM_URL: must be an absolute http(s) URL")
	}
	if cfg.FeedEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("FEED_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// ExternalForm reports whether submissions are collected by an external form.
func (c *Config) ExternalForm() bool {
	return c.SubmissionFormURL != ""
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key + ": must be a positive integer")
	}
	return n, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
