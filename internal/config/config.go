// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, persistence and
// notification workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	DataDir         string
	CartKey         string
	CatalogSeed     string
	CatalogWatch    bool
	AdminToken      string
	NotifyWorkers   int
	NotifyBuffer    int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		DataDir:         getenv("DATA_DIR", "data"),
		CartKey:         getenv("CART_KEY", "cart"),
		CatalogSeed:     getenv("CATALOG_SEED", "catalog.yaml"),
		CatalogWatch:    boolenv("CATALOG_WATCH", false),
		AdminToken:      getenv("ADMIN_TOKEN", ""),
		NotifyWorkers:   atoienv("NOTIFY_WORKERS", 2),
		NotifyBuffer:    atoienv("NOTIFY_BUFFER", 64),
	}
}
