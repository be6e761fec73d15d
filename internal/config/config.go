// Package config loads the analyzer settings document.
//
// Settings are read from a JSON5 file onto a defaults-filled Config, then a
// sibling "<name>.local.<ext>" file, if present, is decoded over the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/titanous/json5"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

// Aggregation scopes.
const (
	ScopeRun = "run" // only matches parsed in the current run
	ScopeAll = "all" // every stored match containing the tracked player
)

// Config is the settings document.
type Config struct {
	// PlayersToTrack maps display name to profile id. Ids may be written as
	// strings or numbers.
	PlayersToTrack map[string]any `json:"players_to_track"`
	General        General        `json:"general_settings"`
	CSV            CSV            `json:"csv_output_options"`
	Database       Database       `json:"database_options"`
	Debugging      Debugging      `json:"debugging"`
}

type General struct {
	RequestDelaySec       float64 `json:"request_delay_sec" validate:"gte=0"`
	MaxMatchesToAnalyze   *int    `json:"max_matches_to_analyze" validate:"omitempty,gte=1"`
	MaxHistoryPagesToScan int     `json:"max_history_pages_to_scan" validate:"gte=1"`
	TopNRelationsToShow   int     `json:"top_n_relations_to_show" validate:"gte=1"`
	AnalyzeChampionStats  bool    `json:"analyze_champion_stats"`
	AnalyzeMapStats       bool    `json:"analyze_map_stats"`
	AggregationScope      string  `json:"aggregation_scope" validate:"oneof=run all"`
	RequestTimeoutSec     float64 `json:"request_timeout_sec" validate:"gte=0"`
	MaxRetries            int     `json:"max_retries" validate:"gte=1"`
	RateLimitBackoffSec   float64 `json:"rate_limit_backoff_sec" validate:"gte=0"`
	BaseURL               string  `json:"base_url" validate:"required,url"`
}

type CSV struct {
	GenerateDetailedStats bool   `json:"generate_detailed_stats_csv"`
	GenerateRelations     bool   `json:"generate_relations_csv"`
	GenerateChampStats    bool   `json:"generate_champ_stats_csv"`
	GenerateMapStats      bool   `json:"generate_map_stats_csv"`
	OutputDir             string `json:"output_dir"`
}

type Database struct {
	EnableSQLite        bool   `json:"enable_sqlite"`
	DBFilename          string `json:"db_filename" validate:"required_if=EnableSQLite true"`
	ForceFullReanalysis bool   `json:"force_full_reanalysis"`
}

type Debugging struct {
	LogLevel string `json:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PlayersToTrack: map[string]any{},
		General: General{
			RequestDelaySec:       0.8,
			MaxHistoryPagesToScan: 50,
			TopNRelationsToShow:   10,
			AnalyzeChampionStats:  true,
			AnalyzeMapStats:       true,
			AggregationScope:      ScopeRun,
			RequestTimeoutSec:     25,
			MaxRetries:            3,
			RateLimitBackoffSec:   10,
			BaseURL:               "https://paladins.guru",
		},
		CSV: CSV{
			GenerateDetailedStats: true,
			GenerateRelations:     true,
			GenerateChampStats:    true,
			GenerateMapStats:      true,
			OutputDir:             ".",
		},
		Database: Database{
			EnableSQLite: true,
			DBFilename:   "paladins_analysis.sqlite",
		},
		Debugging: Debugging{LogLevel: "INFO"},
	}
}

// Load reads the settings at path. When neither path nor its local override
// exists, a default example is written to path and the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	found := false

	base, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		found = true
	}

	localPath := LocalPath(path)
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read local config: %w", err)
	}
	if len(local) > 0 {
		// Decoded onto the loaded settings: keys present in the local file
		// win, including false and 0, and absent keys keep their value.
		if err := json5.Unmarshal(local, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", localPath, err)
		}
		slog.Info("merging config with local overrides", "local", localPath)
		found = true
	}

	if !found {
		slog.Warn("config not found, writing a default example", "path", path)
		if err := WriteDefault(path); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Override merges the non-zero fields of o over c. Zero fields leave c
// unchanged, so a boolean can only be switched on this way. Used for
// command-line flags, where an unset flag is its zero value.
func (c *Config) Override(o Config) error {
	if err := mergo.Merge(c, o, mergo.WithOverride); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	return c.Validate()
}

// LocalPath returns the override file name for path: "config.json" becomes
// "config.local.json".
func LocalPath(path string) string {
	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	return filepath.Join(dir, strings.TrimSuffix(name, ext)+".local"+ext)
}

// WriteDefault writes the default settings as indented JSON.
func WriteDefault(path string) error {
	b, err := json.MarshalIndent(Default(), "", "    ")
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate rejects settings the pipeline cannot run with. Field errors are
// reported by their JSON name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	if _, err := ParseLevel(c.Debugging.LogLevel); err != nil {
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	if f, ok := jsonNames[fe.StructField()]; ok {
		name = f
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "required", "required_if":
		return fmt.Sprintf("%s is required", name)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", name)
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// jsonNames maps struct field names to their settings keys.
var jsonNames = func() map[string]string {
	m := make(map[string]string)
	for _, t := range []reflect.Type{
		reflect.TypeOf(General{}), reflect.TypeOf(CSV{}), reflect.TypeOf(Database{}),
	} {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" {
				m[f.Name] = tag
			}
		}
	}
	return m
}()

// Players returns the tracked players ordered by name.
func (c *Config) Players() ([]model.Player, error) {
	names := make([]string, 0, len(c.PlayersToTrack))
	for name := range c.PlayersToTrack {
		names = append(names, name)
	}
	sort.Strings(names)

	players := make([]model.Player, 0, len(names))
	for _, name := range names {
		var id string
		switch v := c.PlayersToTrack[name].(type) {
		case string:
			id = v
		case float64:
			id = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("players_to_track[%q]: unsupported id %v", name, v)
		}
		players = append(players, model.Player{ID: id, Name: name})
	}
	return players, nil
}

// RequestDelay is the pause after each match request.
func (g General) RequestDelay() time.Duration {
	return seconds(g.RequestDelaySec)
}

// RequestTimeout bounds a single HTTP request.
func (g General) RequestTimeout() time.Duration {
	return seconds(g.RequestTimeoutSec)
}

// RateLimitBackoff is the base wait after an HTTP 429.
func (g General) RateLimitBackoff() time.Duration {
	return seconds(g.RateLimitBackoffSec)
}

// MaxMatches returns the match cap, 0 meaning unlimited.
func (g General) MaxMatches() int {
	if g.MaxMatchesToAnalyze == nil {
		return 0
	}
	return *g.MaxMatchesToAnalyze
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
