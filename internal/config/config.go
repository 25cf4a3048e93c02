// Package config loads service settings and pipeline defaults from the
// environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
)

type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	FetchTimeout   time.Duration
	MaxBodyBytes   int64
	Workers        int

	AzureAccount string
	AzureKey     string

	// Pipeline holds the defaults every analysis starts from before request
	// or flag overrides are merged in.
	Pipeline   edgefinder.Config
	BlurRadius float64
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads the process environment. See Load.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv. Unset variables take their defaults;
// set but malformed ones are all reported together in the returned error.
func Load(getenv func(string) string) (*Config, error) {
	e := &env{getenv: getenv}
	def := edgefinder.DefaultConfig()

	cfg := &Config{
		Host:           e.str("EDGEFINDER_HOST", "0.0.0.0"),
		Port:           e.str("EDGEFINDER_PORT", "8080"),
		RequestTimeout: e.duration("EDGEFINDER_REQUEST_TIMEOUT", 30*time.Second),
		FetchTimeout:   e.duration("EDGEFINDER_FETCH_TIMEOUT", 15*time.Second),
		MaxBodyBytes:   e.int64("EDGEFINDER_MAX_BODY_BYTES", 32*1024*1024), // 32MB
		Workers:        e.int("EDGEFINDER_WORKERS", runtime.NumCPU()),
		AzureAccount:   e.str("AZURE_STORAGE_ACCOUNT", ""),
		AzureKey:       e.str("AZURE_STORAGE_KEY", ""),
		Pipeline: edgefinder.Config{
			Offset:         e.int("EDGEFINDER_OFFSET", def.Offset),
			Pixels:         e.int("EDGEFINDER_PIXELS", def.Pixels),
			ThresholdLight: e.int("EDGEFINDER_THRESHOLD_LIGHT", def.ThresholdLight),
			ThresholdDark:  e.int("EDGEFINDER_THRESHOLD_DARK", def.ThresholdDark),
			BaselineFit:    e.int("EDGEFINDER_BL_FIT", def.BaselineFit),
			BaselineIgnore: e.int("EDGEFINDER_BL_IGNORE", def.BaselineIgnore),
			BaselineOffset: e.int("EDGEFINDER_BL_OFFSET", def.BaselineOffset),
			TangentIgnore:  e.int("EDGEFINDER_TAN_IGNORE", def.TangentIgnore),
			TangentFit:     e.int("EDGEFINDER_TAN_FIT", def.TangentFit),
		},
		BlurRadius: e.float("EDGEFINDER_BLUR_RADIUS", 0),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		e.fail(fmt.Errorf("invalid EDGEFINDER_PORT: %q", cfg.Port))
	}
	if cfg.MaxBodyBytes <= 0 {
		e.fail(fmt.Errorf("EDGEFINDER_MAX_BODY_BYTES must be > 0 (got %d)", cfg.MaxBodyBytes))
	}
	if cfg.RequestTimeout <= 0 || cfg.FetchTimeout <= 0 {
		e.fail(fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)", cfg.RequestTimeout, cfg.FetchTimeout))
	}
	if cfg.Workers < 1 {
		e.fail(fmt.Errorf("EDGEFINDER_WORKERS must be >= 1 (got %d)", cfg.Workers))
	}
	if cfg.BlurRadius < 0 {
		e.fail(fmt.Errorf("EDGEFINDER_BLUR_RADIUS must be >= 0 (got %g)", cfg.BlurRadius))
	}
	if (cfg.AzureAccount == "") != (cfg.AzureKey == "") {
		e.fail(errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together"))
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		e.fail(err)
	}

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	return cfg, nil
}

// env reads typed values and collects parse failures.
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) fail(err error) { e.errs = append(e.errs, err) }

func (e *env) lookup(key string) (string, bool) {
	v := strings.TrimSpace(e.getenv(key))
	return v, v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func (e *env) int64(key string, def int64) int64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func (e *env) int(key string, def int) int {
	return int(e.int64(key, int64(def)))
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return f
}
