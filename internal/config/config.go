package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	PostgresURI         string
	MongoURI            string
	RedisURI            string
	JWTSecret           string
	JWTExpiry           time.Duration // lifetime of issued session tokens
	EmotionAPIURL       string        // external emotion-recognition endpoint; empty = lexicon fallback
	Port                string
	FrontendURL         string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	Environment         string // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	// CORS: allow multiple origins so the production frontend works alongside local dev
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	jwtExpiry := 24 * time.Hour
	if raw := getEnv("JWT_EXPIRY", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			jwtExpiry = d
		}
	}

	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/therapease?sslmode=disable"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/therapease")),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiry:           jwtExpiry,
		EmotionAPIURL:       getEnv("EMOTION_API_URL", ""),
		Environment:         env,
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
