// Package config loads campkit configuration.
//
// Values are resolved in this order, later sources winning:
//
//	1. Default()
//	2. a YAML file (CAMPKIT_CONFIG, or config.yaml / configs/config.yaml)
//	3. environment variables prefixed CAMPKIT_, after loading .env if present
//
// Examples:
//
//	CAMPKIT_SERVER_PORT=9090
//	CAMPKIT_BACKEND_BASE_URL=http://camp.internal:8000
//	CAMPKIT_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//	CAMPKIT_EXPORT_BOM=true
//	CAMPKIT_PDF_ENABLED=true
//
// The loaded Config is validated before it is returned.
package config
