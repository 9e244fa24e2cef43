package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NOTESNEXUS_CONFIG"
	notionTokenEnv    = "NOTION_TOKEN"
	notionDatabaseEnv = "NOTION_DATABASE_ID"
	googleCredEnv     = "GOOGLE_API_CRED"
	deepSeekKeyEnv    = "DEEPSEEK_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Notion   NotionConfig   `yaml:"notion"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
	Board    BoardConfig    `yaml:"board"`
	Batch    BatchConfig    `yaml:"batch"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NotionConfig describes the document store holding source notes.
type NotionConfig struct {
	BaseURL       string `yaml:"baseUrl"`
	Token         string `yaml:"token"`
	DatabaseID    string `yaml:"databaseId"`
	TitleProperty string `yaml:"titleProperty"`
}

// SheetsConfig describes the spreadsheet backing the ledger.
type SheetsConfig struct {
	CredentialsFile string      `yaml:"credentialsFile"`
	SpreadsheetID   string      `yaml:"spreadsheetId"`
	RecordSheet     string      `yaml:"recordSheet"`
	CategorySheet   string      `yaml:"categorySheet"`
	WriteDelayMs    int         `yaml:"writeDelayMs"`
	Retry           RetryConfig `yaml:"retry"`
}

// WriteDelay is the pause between consecutive row writes during import,
// keeping the pass inside the spreadsheet API request budget.
func (s SheetsConfig) WriteDelay() time.Duration {
	return time.Duration(s.WriteDelayMs) * time.Millisecond
}

// RetryConfig bounds retries of rate-limited spreadsheet calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	DelayMs     int `yaml:"delayMs"`
}

// Delay is the fixed pause between retry attempts.
func (r RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelayMs) * time.Millisecond
}

// DeepSeekConfig defines how to contact the classification model.
type DeepSeekConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// BoardConfig describes the browser used to reach the visual board.
type BoardConfig struct {
	// BrowserURL is the DevTools websocket of an already-running browser.
	// Empty launches a local one.
	BrowserURL   string `yaml:"browserUrl"`
	Headless     bool   `yaml:"headless"`
	NavTimeoutMs int    `yaml:"navTimeoutMs"`
}

// NavTimeout bounds navigation and paste interaction per note.
func (b BoardConfig) NavTimeout() time.Duration {
	return time.Duration(b.NavTimeoutMs) * time.Millisecond
}

// BatchConfig bounds the size of one classification request.
type BatchConfig struct {
	// CharBudget is the total character allowance for one request.
	CharBudget int `yaml:"charBudget"`
	// PromptOverhead is a fixed estimate for instructional boilerplate and
	// the category list; it is subtracted from CharBudget before batching.
	PromptOverhead int `yaml:"promptOverhead"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(notionTokenEnv); v != "" {
		c.Notion.Token = v
	}

	if v := os.Getenv(notionDatabaseEnv); v != "" {
		c.Notion.DatabaseID = v
	}

	if v := os.Getenv(googleCredEnv); v != "" {
		c.Sheets.CredentialsFile = v
	}

	if v := os.Getenv(deepSeekKeyEnv); v != "" {
		c.DeepSeek.APIKey = v
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Notion: NotionConfig{
			BaseURL:       "https://api.notion.com",
			TitleProperty: "Name",
		},
		Sheets: SheetsConfig{
			RecordSheet:   "Record",
			CategorySheet: "Category",
			WriteDelayMs:  1100,
			Retry:         RetryConfig{MaxAttempts: 5, DelayMs: 15000},
		},
		DeepSeek: DeepSeekConfig{
			Endpoint: "https://api.deepseek.com/chat/completions",
			Model:    "deepseek-chat",
		},
		Board: BoardConfig{
			Headless:     true,
			NavTimeoutMs: 30000,
		},
		Batch: BatchConfig{
			CharBudget:     8000,
			PromptOverhead: 2000,
		},
	}
}
