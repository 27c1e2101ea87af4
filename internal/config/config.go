package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultContactPaths are probed in order by the contact finder.
var DefaultContactPaths = []string{
	"/impressum",
	"/kontakt",
	"/contact",
	"/ueber-uns",
	"/about",
	"/unternehmen/impressum",
}

type Config struct {
	App struct {
		Host string `yaml:"host" mapstructure:"host" json:"host"`
		Port int    `yaml:"port" mapstructure:"port" json:"port"`
	} `yaml:"app" mapstructure:"app" json:"app"`

	Log struct {
		Level      string `yaml:"level" mapstructure:"level" json:"level"`
		File       string `yaml:"file" mapstructure:"file" json:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb" json:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups" json:"max_backups"`
	} `yaml:"log" mapstructure:"log" json:"log"`

	Search struct {
		Provider string `yaml:"provider" mapstructure:"provider" json:"provider"` // serpapi | duckduckgo
		Endpoint string `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint"`
		Engine   string `yaml:"engine" mapstructure:"engine" json:"engine"`
		Locale   string `yaml:"locale" mapstructure:"locale" json:"locale"`
		// APIKey comes from SERPAPI_KEY or the keyring and is never written back.
		APIKey         string `yaml:"-" mapstructure:"api_key" json:"-"`
		TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"search" mapstructure:"search" json:"search"`

	Fetch struct {
		UserAgent      string `yaml:"user_agent" mapstructure:"user_agent" json:"user_agent"`
		TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds" json:"timeout_seconds"`
		MaxBodyBytes   int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes" json:"max_body_bytes"`
	} `yaml:"fetch" mapstructure:"fetch" json:"fetch"`

	Detection struct {
		Threshold float64 `yaml:"threshold" mapstructure:"threshold" json:"threshold"`
	} `yaml:"detection" mapstructure:"detection" json:"detection"`

	Contact struct {
		Paths []string `yaml:"paths" mapstructure:"paths" json:"paths"`
	} `yaml:"contact" mapstructure:"contact" json:"contact"`

	Discovery struct {
		DefaultNum int      `yaml:"default_num" mapstructure:"default_num" json:"default_num"`
		Blocklist  []string `yaml:"blocklist" mapstructure:"blocklist" json:"blocklist"`
	} `yaml:"discovery" mapstructure:"discovery" json:"discovery"`

	Store struct {
		CheckpointMinutes int `yaml:"checkpoint_minutes" mapstructure:"checkpoint_minutes" json:"checkpoint_minutes"`
	} `yaml:"store" mapstructure:"store" json:"store"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.host", "127.0.0.1")
	v.SetDefault("app.port", 38472)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 10)

	v.SetDefault("search.provider", "serpapi")
	v.SetDefault("search.endpoint", "https://serpapi.com/search.json")
	v.SetDefault("search.engine", "google")
	v.SetDefault("search.locale", "de")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout_seconds", 30)

	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; LeadHunt/1.0)")
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("fetch.max_body_bytes", 5<<20)

	v.SetDefault("detection.threshold", 0.6)
	v.SetDefault("contact.paths", DefaultContactPaths)

	v.SetDefault("discovery.default_num", 10)
	v.SetDefault("discovery.blocklist", []string{})

	v.SetDefault("store.checkpoint_minutes", 30)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads path (YAML) on top of the defaults, then applies .env files and
// environment overrides. LEADHUNT_<SECTION>_<KEY> overrides any key;
// SERPAPI_KEY sets the search credential.
func Load(path string) (Config, error) {
	var cfg Config

	// .env.local wins over .env; neither is required.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEADHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("search.api_key", "SERPAPI_KEY"); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.Search.APIKey = strings.TrimSpace(cfg.Search.APIKey)
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}
