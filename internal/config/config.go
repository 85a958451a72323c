package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	TrackerBin string // BEADVIZ_TRACKER_BIN (default "bd")
	Dir        string // BEADVIZ_DIR (default ".", the working directory to serve)
	HTTPAddr   string // BEADVIZ_HTTP_ADDR (default ":8080")
	NATSURL    string // BEADVIZ_NATS_URL (optional, empty = no events)
	AuthToken  string // BEADVIZ_AUTH_TOKEN (optional, empty = auth disabled)

	// Sync settings
	Debounce    time.Duration // BEADVIZ_DEBOUNCE (default 2s)
	SyncTimeout time.Duration // BEADVIZ_SYNC_TIMEOUT (default 0 = unbounded)
	NoPush      bool          // BEADVIZ_NO_PUSH (default false)

	// Sync attempt history (enabled when set)
	HistoryDatabaseURL string // BEADVIZ_HISTORY_DATABASE_URL

	// Snapshot settings
	SnapshotInterval   time.Duration // BEADVIZ_SNAPSHOT_INTERVAL (default 3m; 0 = disabled)
	SnapshotS3Bucket   string        // BEADVIZ_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // BEADVIZ_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // BEADVIZ_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // BEADVIZ_SNAPSHOT_S3_KEY (default "beadviz/graph.jsonl")
	SnapshotFile       string        // BEADVIZ_SNAPSHOT_FILE (enables file export when set)

	// Storage watching
	WatchStorage bool // BEADVIZ_WATCH_STORAGE (default true)
}

func Load() (*Config, error) {
	c := &Config{
		TrackerBin:         envOrDefault("BEADVIZ_TRACKER_BIN", "bd"),
		Dir:                envOrDefault("BEADVIZ_DIR", "."),
		HTTPAddr:           envOrDefault("BEADVIZ_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("BEADVIZ_NATS_URL"),
		AuthToken:          os.Getenv("BEADVIZ_AUTH_TOKEN"),
		HistoryDatabaseURL: os.Getenv("BEADVIZ_HISTORY_DATABASE_URL"),
		SnapshotS3Bucket:   os.Getenv("BEADVIZ_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("BEADVIZ_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("BEADVIZ_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("BEADVIZ_SNAPSHOT_S3_KEY", "beadviz/graph.jsonl"),
		SnapshotFile:       os.Getenv("BEADVIZ_SNAPSHOT_FILE"),
	}

	var err error
	if c.Debounce, err = envDuration("BEADVIZ_DEBOUNCE", "2s"); err != nil {
		return nil, err
	}
	if c.SyncTimeout, err = envDuration("BEADVIZ_SYNC_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if c.SnapshotInterval, err = envDuration("BEADVIZ_SNAPSHOT_INTERVAL", "3m"); err != nil {
		return nil, err
	}

	c.NoPush = envBool("BEADVIZ_NO_PUSH", false)
	c.WatchStorage = envBool("BEADVIZ_WATCH_STORAGE", true)

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
