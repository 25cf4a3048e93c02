package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(fakeEnv(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("address: got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.FetchTimeout != 15*time.Second {
		t.Errorf("timeouts: got %s/%s", cfg.RequestTimeout, cfg.FetchTimeout)
	}
	if cfg.Workers < 1 {
		t.Errorf("workers: got %d", cfg.Workers)
	}
	if cfg.Pipeline != edgefinder.DefaultConfig() {
		t.Errorf("pipeline: got %+v, want defaults", cfg.Pipeline)
	}
	if cfg.BlurRadius != 0 {
		t.Errorf("blur radius: got %v, want 0", cfg.BlurRadius)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(fakeEnv(map[string]string{
		"EDGEFINDER_HOST":            "127.0.0.1",
		"EDGEFINDER_PORT":            " 9090 ",
		"EDGEFINDER_REQUEST_TIMEOUT": "1m",
		"EDGEFINDER_WORKERS":         "3",
		"EDGEFINDER_PIXELS":          "4",
		"EDGEFINDER_THRESHOLD_DARK":  "60",
		"EDGEFINDER_TAN_FIT":         "15",
		"EDGEFINDER_BLUR_RADIUS":     "1.5",
		"AZURE_STORAGE_ACCOUNT":      "acct",
		"AZURE_STORAGE_KEY":          "a2V5",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("address: got %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != time.Minute || cfg.Workers != 3 {
		t.Errorf("got timeout %s workers %d", cfg.RequestTimeout, cfg.Workers)
	}
	if cfg.Pipeline.Pixels != 4 || cfg.Pipeline.ThresholdDark != 60 || cfg.Pipeline.TangentFit != 15 {
		t.Errorf("pipeline overrides not applied: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Offset != 100 {
		t.Errorf("untouched field changed: offset %d", cfg.Pipeline.Offset)
	}
	if cfg.BlurRadius != 1.5 || cfg.AzureAccount != "acct" {
		t.Errorf("got blur %v account %q", cfg.BlurRadius, cfg.AzureAccount)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"port not numeric", map[string]string{"EDGEFINDER_PORT": "http"}, "EDGEFINDER_PORT"},
		{"port out of range", map[string]string{"EDGEFINDER_PORT": "70000"}, "EDGEFINDER_PORT"},
		{"bad duration", map[string]string{"EDGEFINDER_FETCH_TIMEOUT": "soon"}, "EDGEFINDER_FETCH_TIMEOUT"},
		{"zero timeout", map[string]string{"EDGEFINDER_REQUEST_TIMEOUT": "0s"}, "timeouts"},
		{"body size", map[string]string{"EDGEFINDER_MAX_BODY_BYTES": "-1"}, "EDGEFINDER_MAX_BODY_BYTES"},
		{"workers", map[string]string{"EDGEFINDER_WORKERS": "0"}, "EDGEFINDER_WORKERS"},
		{"blur", map[string]string{"EDGEFINDER_BLUR_RADIUS": "-2"}, "EDGEFINDER_BLUR_RADIUS"},
		{"azure half set", map[string]string{"AZURE_STORAGE_ACCOUNT": "acct"}, "AZURE_STORAGE_KEY"},
		{"pipeline", map[string]string{"EDGEFINDER_PIXELS": "0"}, "pixels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(fakeEnv(tt.vars))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	_, err := Load(fakeEnv(map[string]string{
		"EDGEFINDER_PORT":   "x",
		"EDGEFINDER_PIXELS": "many",
	}))
	if err == nil {
		t.Fatal("Load should fail")
	}
	for _, want := range []string{"EDGEFINDER_PORT", "EDGEFINDER_PIXELS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_PipelineErrorIsTyped(t *testing.T) {
	_, err := Load(fakeEnv(map[string]string{"EDGEFINDER_TAN_FIT": "1"}))
	if !errors.Is(err, edgefinder.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}
