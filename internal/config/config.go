package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	CORSOrigins []string         `json:"cors_origins"`
	MetricsAddr string           `json:"metrics_addr"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Session     SessionConfig    `json:"session"`
	AI          AIConfig         `json:"ai"`
	Chat        ChatConfig       `json:"chat"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type SessionConfig struct {
	Type       string      `json:"type"`
	TTLMinutes int         `json:"ttl_minutes"`
	Size       int         `json:"size"`
	Data       interface{} `json:"data"`
}

type AIProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	AIProviderConfig
	Timeout         int                `json:"timeout"`
	HistoryMessages int                `json:"history_messages"`
	Fallbacks       []AIProviderConfig `json:"fallbacks"`
}

type ChatConfig struct {
	LogDir           string `json:"log_dir"`
	MaxUploadMB      int    `json:"max_upload_mb"`
	MaxPages         int    `json:"max_pages"`
	MaxChars         int    `json:"max_chars"`
	RecommendCount   int    `json:"recommend_count"`
	RagTopK          int    `json:"rag_top_k"`
	SnippetChars     int    `json:"snippet_chars"`
	DocMaxPages      int    `json:"doc_max_pages"`
	DocMaxChars      int    `json:"doc_max_chars"`
	DocTopK          int    `json:"doc_top_k"`
	DocSnippetChars  int    `json:"doc_snippet_chars"`
	MaxDocuments     int    `json:"max_documents"`
	RateLimitSeconds int    `json:"rate_limit_seconds"`
}

func (c ChatConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.JWTTTLHours == 0 {
		c.JWTTTLHours = 72
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	c.FileStore.Type = strings.ToLower(strings.TrimSpace(c.FileStore.Type))
	if c.FileStore.Type == "" {
		c.FileStore.Type = "local"
	}
	if c.FileStore.Type != "local" && c.FileStore.Type != "s3" {
		return fmt.Errorf("file_store.type must be local or s3")
	}
	c.Session.Type = strings.ToLower(strings.TrimSpace(c.Session.Type))
	if c.Session.Type == "" {
		c.Session.Type = "memory"
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 120
	}
	if c.Session.Size <= 0 {
		c.Session.Size = 10000
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60
	}
	if c.AI.HistoryMessages <= 0 {
		c.AI.HistoryMessages = 6
	}
	c.Chat.applyDefaults()
	return nil
}

func (c *ChatConfig) applyDefaults() {
	setDefault(&c.MaxUploadMB, 50)
	setDefault(&c.MaxPages, 25)
	setDefault(&c.MaxChars, 200_000)
	setDefault(&c.RecommendCount, 6)
	setDefault(&c.RagTopK, 5)
	setDefault(&c.SnippetChars, 900)
	setDefault(&c.DocMaxPages, 15)
	setDefault(&c.DocMaxChars, 50_000)
	setDefault(&c.DocTopK, 2)
	setDefault(&c.DocSnippetChars, 400)
	setDefault(&c.MaxDocuments, 5)
	if c.LogDir == "" {
		c.LogDir = "data/chatlogs"
	}
}

// DefaultChat returns a chat config populated with the built-in limits.
func DefaultChat() ChatConfig {
	c := ChatConfig{}
	c.applyDefaults()
	return c
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
