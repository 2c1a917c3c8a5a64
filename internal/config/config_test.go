package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost:5432/db")
	t.Setenv("MODELS_DIR", "/models")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("COUNT_CACHE_TTL_SEC", "5")
	t.Setenv("DEFAULT_LIMIT", "30")
	t.Setenv("DEFAULT_SORT", "created desc")
	t.Setenv("PREVENT_FILTER_OVERWRITING", "false")
	t.Setenv("PREVENT_CRITERIA_OVERWRITING", "true")
	t.Setenv("NATIVE_DOT_PATH", "1")

	cfg := LoadConfig()
	want := &Config{
		PostgresDSN: "postgres://u:p@localhost:5432/db",
		ModelsDir:   "/models",
		RedisAddr:   "localhost:6379",
		Query: QueryConfig{
			CountCacheTTL:              5 * time.Second,
			DefaultLimit:               30,
			DefaultSort:                "created desc",
			PreventFilterOverwriting:   false,
			PreventCriteriaOverwriting: true,
			NativeDotPath:              true,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DEFAULT_LIMIT", "many")
	t.Setenv("PREVENT_FILTER_OVERWRITING", "maybe")

	cfg := LoadConfig()
	if cfg.Query.DefaultLimit != 15 {
		t.Fatalf("DefaultLimit = %d, want 15", cfg.Query.DefaultLimit)
	}
	if !cfg.Query.PreventFilterOverwriting {
		t.Fatalf("PreventFilterOverwriting should keep its default")
	}
}

func TestParseSort(t *testing.T) {
	got := ParseSort("created desc, name ,, id ASC")
	want := [][2]string{{"created", "desc"}, {"name", ""}, {"id", "ASC"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseSort mismatch (-want +got):\n%s", diff)
	}
}
