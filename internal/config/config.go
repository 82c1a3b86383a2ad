package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 5000
	DefaultMode         = "standalone"
	DefaultProvider     = "gemini"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1024
	DefaultIdleTimeout  = 60 * time.Second
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second // per chat stream frame
	DefaultDataDir      = "attached_assets"
	DefaultCacheFile    = "context-cache.json"
	DefaultOwner        = "Hans Gunawan"
	DefaultSMTPHost     = "smtp.gmail.com"
	DefaultSMTPPort     = 587
	DefaultConfigFile   = "portfolio.yaml"
)

// Context modes.
const (
	ContextRequest = "request" // rebuild on every request
	ContextCached  = "cached"  // build once, rebuild when sources change
	ContextStatic  = "static"  // serve the cache file written by build-context
)

// Contact store kinds.
const (
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Chat     ChatConfig     `yaml:"chat"`
	Context  ContextConfig  `yaml:"context"`
	Profile  ProfileConfig  `yaml:"profile"`
	Contact  ContactConfig  `yaml:"contact"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"` // "standalone" (net/http) or "gin"
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	StaticDir    string        `yaml:"staticDir,omitempty"`
}

type ProviderConfig struct {
	Type        string  `yaml:"type"` // gemini, groq, openai, anthropic
	APIKey      string  `yaml:"apiKey,omitempty"`
	BaseURL     string  `yaml:"baseUrl,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"` // unset means DefaultTemperature
	MaxTokens   int     `yaml:"maxTokens"`
}

type ChatConfig struct {
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	Persona        string        `yaml:"persona,omitempty"`
	Acknowledgment string        `yaml:"acknowledgment,omitempty"`
}

type ContextConfig struct {
	Mode            string `yaml:"mode"`
	DataDir         string `yaml:"dataDir"`
	ProjectsDir     string `yaml:"projectsDir"`
	AchievementsDir string `yaml:"achievementsDir"`
	PublicationsDir string `yaml:"publicationsDir"`
	ExtrasDir       string `yaml:"extrasDir,omitempty"`
	CacheFile       string `yaml:"cacheFile"`
}

type ProfileConfig struct {
	Name  string   `yaml:"name"`
	Facts []string `yaml:"facts"`
}

type ContactConfig struct {
	Store string     `yaml:"store"`
	DSN   string     `yaml:"dsn,omitempty"`
	SMTP  SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	To       string `yaml:"to,omitempty"`
}

// DefaultFacts is the fixed personal information of the portfolio owner.
var DefaultFacts = []string{
	"Education: Mahasiswa Sistem Informasi, Universitas Kristen Duta Wacana (UKDW)",
	"Focus: Full-stack Development, AI Integration, Data Management",
	"Tech Stack: Laravel, React, .NET MAUI, PostgreSQL, Express.js",
	"AI-native mindset: Mengintegrasikan AI (Gemini, IBM Granite) dalam solusi bisnis",
	"Principles: 1L + 5C (Leadership, Competence, Compassion, Consistency, Conscience, Commitment)",
	"Experience: 2+ years in web development and data management",
	"Notable Projects: FITAI (AI Fitness), SmartDev Academic, and more",
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			Mode:         DefaultMode,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Provider: ProviderConfig{
			Temperature: float64Ptr(DefaultTemperature),
			MaxTokens:   DefaultMaxTokens,
		},
		Chat: ChatConfig{
			IdleTimeout: DefaultIdleTimeout,
		},
		Context: ContextConfig{
			Mode:      ContextRequest,
			DataDir:   DefaultDataDir,
			CacheFile: DefaultCacheFile,
		},
		Profile: ProfileConfig{
			Name:  DefaultOwner,
			Facts: append([]string(nil), DefaultFacts...),
		},
		Contact: ContactConfig{
			Store: StoreNone,
			SMTP: SMTPConfig{
				Host: DefaultSMTPHost,
				Port: DefaultSMTPPort,
			},
		},
	}
}

// ConfigPath returns the config file location: PORTFOLIO_CONFIG, then
// portfolio.yaml in the working directory.
func ConfigPath() string {
	if p := os.Getenv("PORTFOLIO_CONFIG"); p != "" {
		return p
	}
	return DefaultConfigFile
}

// LoadConfig reads path (a missing file is fine), applies environment
// overrides, then fills anything left empty with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	backfill(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if p := os.Getenv("PORTFOLIO_PROVIDER"); p != "" {
		cfg.Provider.Type = p
	}
	if m := os.Getenv("PORTFOLIO_MODEL"); m != "" {
		cfg.Provider.Model = m
	}

	// The first key present picks the provider when none is configured.
	keys := []struct{ typ, env string }{
		{"gemini", "GEMINI_API_KEY"},
		{"groq", "GROQ_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"anthropic", "ANTHROPIC_API_KEY"},
	}
	if cfg.Provider.APIKey == "" {
		for _, k := range keys {
			key := os.Getenv(k.env)
			if key == "" {
				continue
			}
			if cfg.Provider.Type == "" {
				cfg.Provider.Type = k.typ
			}
			if cfg.Provider.Type == k.typ {
				cfg.Provider.APIKey = key
				break
			}
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if user := os.Getenv("EMAIL_USER"); user != "" {
		cfg.Contact.SMTP.Username = user
	}
	if pass := os.Getenv("EMAIL_PASS"); pass != "" {
		cfg.Contact.SMTP.Password = pass
	}
	if dir := os.Getenv("PORTFOLIO_DATA_DIR"); dir != "" {
		cfg.Context.DataDir = dir
	}
}

func backfill(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = DefaultProvider
	}
	if cfg.Provider.Temperature == nil {
		cfg.Provider.Temperature = float64Ptr(DefaultTemperature)
	}
	if cfg.Provider.MaxTokens == 0 {
		cfg.Provider.MaxTokens = DefaultMaxTokens
	}
	if cfg.Context.Mode == "" {
		cfg.Context.Mode = ContextRequest
	}
	if cfg.Context.DataDir == "" {
		cfg.Context.DataDir = DefaultDataDir
	}
	if cfg.Context.ProjectsDir == "" {
		cfg.Context.ProjectsDir = filepath.Join(cfg.Context.DataDir, "projects")
	}
	if cfg.Context.AchievementsDir == "" {
		cfg.Context.AchievementsDir = filepath.Join(cfg.Context.DataDir, "achievements")
	}
	if cfg.Context.PublicationsDir == "" {
		cfg.Context.PublicationsDir = filepath.Join(cfg.Context.DataDir, "publications")
	}
	if cfg.Context.CacheFile == "" {
		cfg.Context.CacheFile = DefaultCacheFile
	}
	if cfg.Profile.Name == "" {
		cfg.Profile.Name = DefaultOwner
	}
	if cfg.Contact.Store == "" {
		cfg.Contact.Store = StoreNone
	}
	if cfg.Contact.SMTP.Host == "" {
		cfg.Contact.SMTP.Host = DefaultSMTPHost
	}
	if cfg.Contact.SMTP.Port == 0 {
		cfg.Contact.SMTP.Port = DefaultSMTPPort
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.Contact.SMTP.Username != "" && c.Contact.SMTP.Password != ""
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "standalone", "gin":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	switch c.Context.Mode {
	case ContextRequest, ContextCached, ContextStatic:
	default:
		return fmt.Errorf("unknown context mode %q", c.Context.Mode)
	}
	switch c.Contact.Store {
	case StoreNone, StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("unknown contact store %q", c.Contact.Store)
	}
	return nil
}
