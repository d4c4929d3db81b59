package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Backend   BackendConfig   `yaml:"backend" envconfig:"BACKEND"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Search    SearchConfig    `yaml:"search" envconfig:"SEARCH"`
	Notify    NotifyConfig    `yaml:"notify" envconfig:"NOTIFY"`
	PDF       PDFConfig       `yaml:"pdf" envconfig:"PDF"`
	Locale    LocaleConfig    `yaml:"locale" envconfig:"LOCALE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	StaticDir       string        `yaml:"static_dir" envconfig:"STATIC_DIR"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	EnableCSRF     bool            `yaml:"enable_csrf" envconfig:"ENABLE_CSRF"`
	CSRFKey        string          `yaml:"csrf_key" envconfig:"CSRF_KEY"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Metrics     bool   `yaml:"metrics" envconfig:"METRICS"`
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
}

// BackendConfig points at the camp-management API
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ExportConfig contains download settings
type ExportConfig struct {
	CSVFilename  string `yaml:"csv_filename" envconfig:"CSV_FILENAME"`
	XLSXFilename string `yaml:"xlsx_filename" envconfig:"XLSX_FILENAME"`
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
	BOM          bool   `yaml:"bom" envconfig:"BOM"`
}

// SearchConfig contains search-as-you-type settings
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
}

// NotifyConfig contains notification settings
type NotifyConfig struct {
	AutoHide time.Duration `yaml:"auto_hide" envconfig:"AUTO_HIDE"`
}

// PDFConfig contains PDF rendering settings
type PDFConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	ExecPath string        `yaml:"exec_path" envconfig:"EXEC_PATH"`
}

// LocaleConfig contains display formatting settings
type LocaleConfig struct {
	Language string `yaml:"language" envconfig:"LANGUAGE"`
	Currency string `yaml:"currency" envconfig:"CURRENCY"`
	TimeZone string `yaml:"time_zone" envconfig:"TIME_ZONE"`
}

// Location resolves TimeZone, falling back to UTC
func (l LocaleConfig) Location() *time.Location {
	if l.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load builds the configuration from defaults, the config file and the
// environment. An empty path means CAMPKIT_CONFIG or the usual locations.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes a few fields
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.EnableCSRF && len(c.Security.CSRFKey) != 32 {
		return fmt.Errorf("csrf key must be 32 bytes, got %d", len(c.Security.CSRFKey))
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	if c.Search.Debounce < 0 || c.Notify.AutoHide < 0 || c.PDF.Timeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	if _, err := language.Parse(c.Locale.Language); err != nil {
		return fmt.Errorf("invalid locale language %q: %w", c.Locale.Language, err)
	}
	if _, err := currency.ParseISO(c.Locale.Currency); err != nil {
		return fmt.Errorf("invalid locale currency %q: %w", c.Locale.Currency, err)
	}
	if c.Locale.TimeZone != "" {
		if _, err := time.LoadLocation(c.Locale.TimeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", c.Locale.TimeZone, err)
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
			StaticDir:       "web/static",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			EnableCSRF:     false,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Metrics:     true,
		},
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Export: ExportConfig{
			CSVFilename:  "export.csv",
			XLSXFilename: "export.xlsx",
			DownloadsDir: DefaultDownloadsDir,
		},
		Search: SearchConfig{Debounce: DefaultSearchDebounce},
		Notify: NotifyConfig{AutoHide: DefaultAutoHide},
		PDF: PDFConfig{
			Timeout: DefaultPDFTimeout,
		},
		Locale: LocaleConfig{
			Language: DefaultLanguage,
			Currency: DefaultCurrency,
			TimeZone: DefaultTimeZone,
		},
	}
}
