package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Routing.Provider != ProviderORS {
		t.Errorf("expected default provider ORS, got %s", cfg.Routing.Provider)
	}
	if cfg.Routing.Timeout != 8*time.Second {
		t.Errorf("expected 8s routing timeout, got %s", cfg.Routing.Timeout)
	}
	if cfg.DB.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %s", cfg.DB.Driver)
	}
	if cfg.Replan.Interval != 0 {
		t.Errorf("expected replanning disabled by default, got %s", cfg.Replan.Interval)
	}
}

func TestLoad_ProviderSelection(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "mapbox")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Routing.Provider != ProviderMapbox {
		t.Errorf("expected MAPBOX, got %s", cfg.Routing.Provider)
	}
	if cfg.Routing.APIKey() != "pk.test" {
		t.Errorf("expected mapbox token, got %q", cfg.Routing.APIKey())
	}
}

func TestLoad_MissingCredentialIsNotFatal(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "GOOGLE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing credential must not fail startup: %v", err)
	}
	if cfg.Routing.APIKey() != "" {
		t.Errorf("expected empty key, got %q", cfg.Routing.APIKey())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown provider", "ROUTING_PROVIDER", "OSRM"},
		{"bad port", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"timeout too short", "ROUTING_TIMEOUT", "10ms"},
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"postgres without url", "DB_DRIVER", "postgres"},
		{"replan too frequent", "REPLAN_INTERVAL", "1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("CLIENT_ORIGINS", " http://a.test , ,http://b.test")
	got := getEnvList("CLIENT_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", got)
	}
}
