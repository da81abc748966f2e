package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MentionScanner/internal/domain"
)

const (
	configPathEnv     = "MENTION_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	keywordsEnv       = "KEYWORDS"
	activeSourcesEnv  = "ACTIVE_SOURCES"
	dailyLimitEnv     = "DAILY_LIMIT"
)

// keywordSplit accepts comma- or newline-separated keyword lists.
var keywordSplit = regexp.MustCompile(`[,\n]+`)

// Config holds everything one run needs. It is built once at startup and
// passed in; no component reads ambient environment state.
type Config struct {
	Keywords   []string       `yaml:"keywords"`
	Sources    []string       `yaml:"sources"`
	DailyLimit int            `yaml:"dailyLimit"`
	TopN       int            `yaml:"topN"`
	Fetch      FetchConfig    `yaml:"fetch"`
	Notify     NotifyConfig   `yaml:"notify"`
	Scoring    ScoringConfig  `yaml:"scoring"`
	Database   DatabaseConfig `yaml:"database"`
	Telegram   TelegramConfig `yaml:"telegram"`
	Logging    LoggingConfig  `yaml:"logging"`
	RunTimeout time.Duration  `yaml:"runTimeout"`
}

// FetchConfig tunes the coordinator's outbound behavior.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxAttempts  int           `yaml:"maxAttempts"`
	RetryBase    time.Duration `yaml:"retryBase"`
	PerSourceRPS float64       `yaml:"perSourceRps"`
}

// NotifyConfig bounds the notification path.
type NotifyConfig struct {
	ChunkLimit  int           `yaml:"chunkLimit"`
	MinInterval time.Duration `yaml:"minInterval"`
}

// ScoringConfig is the weight table for the additive relevance heuristic.
type ScoringConfig struct {
	SourceWeights  map[string]float64 `yaml:"sourceWeights"`
	TitleBonus     float64            `yaml:"titleBonus"`
	TitleMin       int                `yaml:"titleMin"`
	TitleMax       int                `yaml:"titleMax"`
	PublishedBonus float64            `yaml:"publishedBonus"`
}

// DatabaseConfig describes the Postgres archival sink.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// TelegramConfig wires the notification sink.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing file falls back to defaults; a broken one is logged
// and ignored, matching how the scanner runs from minimal CI environments.
func Load(path string) Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate enforces the run preconditions: at least one keyword, at least one
// source, every source inside the closed enumeration, and a positive limit.
// Failing here aborts before any fetching happens.
func (c Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("configuration: no keywords configured")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("configuration: no sources configured")
	}
	for _, s := range c.Sources {
		if _, ok := domain.ParseSourceID(s); !ok {
			return fmt.Errorf("configuration: unknown source %q (known: %v)", s, domain.KnownSources())
		}
	}
	if c.DailyLimit <= 0 {
		return fmt.Errorf("configuration: dailyLimit must be positive, got %d", c.DailyLimit)
	}
	return nil
}

// SourceIDs returns the configured sources as enum values. Call after
// Validate.
func (c Config) SourceIDs() []domain.SourceID {
	ids := make([]domain.SourceID, 0, len(c.Sources))
	for _, s := range c.Sources {
		if id, ok := domain.ParseSourceID(s); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(keywordsEnv); v != "" {
		c.Keywords = splitList(v)
	}
	if v := os.Getenv(activeSourcesEnv); v != "" {
		c.Sources = splitList(strings.ToLower(v))
	}
	if v := os.Getenv(dailyLimitEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DailyLimit = n
		} else {
			log.Printf("config: ignoring %s=%q: not a positive integer", dailyLimitEnv, v)
		}
	}
}

func splitList(raw string) []string {
	parts := keywordSplit.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if len(override.Keywords) > 0 {
		base.Keywords = override.Keywords
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	if override.DailyLimit > 0 {
		base.DailyLimit = override.DailyLimit
	}
	if override.TopN > 0 {
		base.TopN = override.TopN
	}

	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.MaxAttempts > 0 {
		base.Fetch.MaxAttempts = override.Fetch.MaxAttempts
	}
	if override.Fetch.RetryBase > 0 {
		base.Fetch.RetryBase = override.Fetch.RetryBase
	}
	if override.Fetch.PerSourceRPS > 0 {
		base.Fetch.PerSourceRPS = override.Fetch.PerSourceRPS
	}

	if override.Notify.ChunkLimit > 0 {
		base.Notify.ChunkLimit = override.Notify.ChunkLimit
	}
	if override.Notify.MinInterval > 0 {
		base.Notify.MinInterval = override.Notify.MinInterval
	}

	if len(override.Scoring.SourceWeights) > 0 {
		base.Scoring.SourceWeights = override.Scoring.SourceWeights
	}
	if override.Scoring.TitleBonus > 0 {
		base.Scoring.TitleBonus = override.Scoring.TitleBonus
	}
	if override.Scoring.TitleMin > 0 {
		base.Scoring.TitleMin = override.Scoring.TitleMin
	}
	if override.Scoring.TitleMax > 0 {
		base.Scoring.TitleMax = override.Scoring.TitleMax
	}
	if override.Scoring.PublishedBonus > 0 {
		base.Scoring.PublishedBonus = override.Scoring.PublishedBonus
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.RunTimeout > 0 {
		base.RunTimeout = override.RunTimeout
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Sources:    []string{"reddit", "youtube", "hackernews"},
		DailyLimit: 50,
		TopN:       20,
		Fetch: FetchConfig{
			Timeout:      20 * time.Second,
			MaxAttempts:  3,
			RetryBase:    500 * time.Millisecond,
			PerSourceRPS: 1,
		},
		Notify: NotifyConfig{
			ChunkLimit:  4096,
			MinInterval: 700 * time.Millisecond,
		},
		Scoring: ScoringConfig{
			SourceWeights: map[string]float64{
				"hackernews": 3,
				"youtube":    2,
				"reddit":     1,
			},
			TitleBonus:     1.5,
			TitleMin:       12,
			TitleMax:       120,
			PublishedBonus: 1,
		},
		Logging:    LoggingConfig{Level: "info"},
		RunTimeout: 10 * time.Minute,
	}
}
