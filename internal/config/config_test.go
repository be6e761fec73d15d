package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("want defaults (-want +got):\n%s", diff)
	}
	_, err = os.Stat(path)
	require.NoError(t, err, "default example should be written")

	// The written example must load back to the same settings.
	again, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
		// JSON5 comments and trailing commas are accepted.
		players_to_track: {"Some One": "123", "Other": 456,},
		general_settings: {request_delay_sec: 1.5, max_matches_to_analyze: 20, analyze_map_stats: false},
		database_options: {enable_sqlite: false},
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	if cfg.General.RequestDelay() != 1500*time.Millisecond {
		t.Errorf("RequestDelay: want 1.5s, got %v", cfg.General.RequestDelay())
	}
	if cfg.General.MaxMatches() != 20 {
		t.Errorf("MaxMatches: want 20, got %d", cfg.General.MaxMatches())
	}
	if cfg.General.MaxHistoryPagesToScan != 50 || cfg.General.TopNRelationsToShow != 10 {
		t.Errorf("unset fields should keep defaults, got %+v", cfg.General)
	}
	if cfg.General.AnalyzeMapStats || cfg.Database.EnableSQLite {
		t.Error("explicit false values should override defaults")
	}
	if cfg.Database.DBFilename != "paladins_analysis.sqlite" {
		t.Errorf("db filename: got %q", cfg.Database.DBFilename)
	}

	players, err := cfg.Players()
	require.NoError(t, err)
	want := []model.Player{{ID: "456", Name: "Other"}, {ID: "123", Name: "Some One"}}
	if diff := cmp.Diff(want, players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{"general_settings": {"top_n_relations_to_show": 5}, "debugging": {"log_level": "DEBUG"}}`)
	writeFile(t, filepath.Join(dir, "config.local.json"), `{"general_settings": {"aggregation_scope": "all"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	if cfg.General.AggregationScope != ScopeAll {
		t.Errorf("scope: want all, got %q", cfg.General.AggregationScope)
	}
	if cfg.General.TopNRelationsToShow != 5 || cfg.Debugging.LogLevel != "DEBUG" {
		t.Errorf("base values should survive the merge, got %+v", cfg)
	}
}

func TestLocalOverrideCanDisableAndZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{players_to_track: {"Main": "1"}}`)
	writeFile(t, filepath.Join(dir, "config.local.json"), `{
		general_settings: {analyze_map_stats: false, analyze_champion_stats: false, request_delay_sec: 0, top_n_relations_to_show: 3},
		csv_output_options: {generate_relations_csv: false},
		database_options: {enable_sqlite: false},
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.PlayersToTrack = map[string]any{"Main": "1"}
	want.General.AnalyzeMapStats = false
	want.General.AnalyzeChampionStats = false
	want.General.RequestDelaySec = 0
	want.General.TopNRelationsToShow = 3
	want.CSV.GenerateRelations = false
	want.Database.EnableSQLite = false
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("local override mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideAppliesSetFieldsOnly(t *testing.T) {
	cfg := Default()
	n := 7
	var o Config
	o.General.AggregationScope = ScopeAll
	o.General.MaxMatchesToAnalyze = &n
	o.Database.ForceFullReanalysis = true

	require.NoError(t, cfg.Override(o))
	require.Equal(t, ScopeAll, cfg.General.AggregationScope)
	require.Equal(t, 7, cfg.General.MaxMatches())
	require.True(t, cfg.Database.ForceFullReanalysis)
	// Zero fields leave settings alone.
	require.True(t, cfg.Database.EnableSQLite)
	require.Equal(t, 10, cfg.General.TopNRelationsToShow)
	require.Equal(t, "https://paladins.guru", cfg.General.BaseURL)

	o = Config{}
	o.General.AggregationScope = "forever"
	require.ErrorContains(t, cfg.Override(o), "aggregation_scope")
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"general_settings": {"aggregation_scope": "forever"}}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "aggregation_scope must be one of [run all]")

	writeFile(t, path, `{"general_settings": {"request_delay_sec": -1, "max_matches_to_analyze": -5}}`)
	_, err = Load(path)
	require.ErrorContains(t, err, "request_delay_sec must be at least 0")
	require.ErrorContains(t, err, "max_matches_to_analyze must be at least 1")

	// Zero counts would silently mean "default" or "unlimited" downstream.
	writeFile(t, path, `{"general_settings": {"max_retries": 0, "max_history_pages_to_scan": 0, "top_n_relations_to_show": 0}}`)
	_, err = Load(path)
	require.ErrorContains(t, err, "max_retries must be at least 1")
	require.ErrorContains(t, err, "max_history_pages_to_scan must be at least 1")
	require.ErrorContains(t, err, "top_n_relations_to_show must be at least 1")

	writeFile(t, path, `{"general_settings": {"max_matches_to_analyze": 0}}`)
	_, err = Load(path)
	require.ErrorContains(t, err, "max_matches_to_analyze must be at least 1")

	writeFile(t, path, `{"general_settings": {"base_url": "not a url"}}`)
	_, err = Load(path)
	require.ErrorContains(t, err, "base_url")

	writeFile(t, path, `{"debugging": {"log_level": "LOUD"}}`)
	_, err = Load(path)
	require.Error(t, err)

	writeFile(t, path, `{not json`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestLocalPath(t *testing.T) {
	if got := LocalPath(filepath.Join("etc", "config.json")); got != filepath.Join("etc", "config.local.json") {
		t.Errorf("LocalPath: got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q): want %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud): want error")
	}
}
