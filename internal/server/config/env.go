package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "RECIPES_"

// parseEnv overlays RECIPES_* environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win over it.
//
// Durations accept Go duration strings ("15m"); malformed numeric values
// are ignored.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("HTTP_ADDR", &config.EndpointAddrHTTP)
	setString("GRPC_ADDR", &config.EndpointAddrGRPC)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	setDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	setString("REDIS_ADDR", &config.RedisAddr)
	setString("REDIS_PASSWORD", &config.RedisPassword)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("LOG_LEVEL", &config.LogLevel)
	setDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)

	if v, ok := os.LookupEnv(envPrefix + "ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv(envPrefix + "AUTH_RPM"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.AuthRequestsPerMinute = n
		}
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
