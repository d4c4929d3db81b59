package config

import "time"

// Application constants
const (
	AppName    = "campkit"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. CAMPKIT_SERVER_PORT
	EnvPrefix = "CAMPKIT"
	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "CAMPKIT_CONFIG"
	// EnvFile is loaded into the environment before anything else, if present
	EnvFile = ".env"
)

// Defaults shared by Default() and the packages that fall back on them
const (
	DefaultPort           = 8080
	DefaultBackendURL     = "http://localhost:8000"
	DefaultBackendTimeout = 10 * time.Second
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultAutoHide       = 5 * time.Second
	DefaultPDFTimeout     = 30 * time.Second
	DefaultDownloadsDir   = "data/downloads"
	DefaultLogFile        = "logs/campkit.log"
	DefaultLanguage       = "fr-FR"
	DefaultCurrency       = "EUR"
	DefaultTimeZone       = "Europe/Paris"
)
