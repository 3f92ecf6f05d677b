package config

import (
	"os"
	"strings"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the corresponding fields untouched, so values from earlier stages
// (defaults, JSON) survive.
//
// Recognized variables:
//
//	ADDRESS                 HTTP bind address
//	DATABASE_DSN            PostgreSQL DSN
//	SECRET_KEY              JWT HMAC secret key
//	ADMIN_TOKEN             admin endpoint shared secret
//	ACCESS_TOKEN_VALIDITY   token lifetime, e.g. "30m"
//	CORS_ALLOWED_ORIGINS    comma-separated origin list
//
// An unparseable ACCESS_TOKEN_VALIDITY panics, matching how the JSON stage
// treats malformed input.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("ADMIN_TOKEN"); ok {
		config.AdminToken = v
	}
	if v, ok := os.LookupEnv("ACCESS_TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitOrigins(v)
	}
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
