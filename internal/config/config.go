package config

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
)

// Config is read once at startup from VERDANT_* environment variables.
type Config struct {
	Port     string
	DataPath string
	Env      string
	LogLevel string
	LogFmt   string

	AdminEmail    string
	AdminPassword string

	CookieDomain   string
	CookieSameSite string
	AllowedOrigins []string

	// S3-compatible snapshot backups; disabled unless bucket and keys are set.
	S3Endpoint     string
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	BackupInterval time.Duration

	WeatherLatitude  string
	WeatherLongitude string
	WeatherUnits     string

	DiagnosisURL    string
	DiagnosisAPIKey string
	DiagnosisModel  string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

// Load reads the environment, applying defaults for everything optional.
func Load() Config {
	cfg := Config{
		Port:             envOr("VERDANT_PORT", "8080"),
		DataPath:         envOr("VERDANT_DATA_PATH", "verdant.json"),
		Env:              envOr("VERDANT_ENV", "development"),
		LogLevel:         envOr("VERDANT_LOG_LEVEL", "info"),
		LogFmt:           envOr("VERDANT_LOG_FORMAT", "text"),
		AdminEmail:       envOr("VERDANT_ADMIN_EMAIL", "admin@verdant.local"),
		AdminPassword:    os.Getenv("VERDANT_ADMIN_PASSWORD"),
		CookieDomain:     os.Getenv("VERDANT_COOKIE_DOMAIN"),
		CookieSameSite:   envOr("VERDANT_COOKIE_SAMESITE", "lax"),
		S3Endpoint:       os.Getenv("VERDANT_S3_ENDPOINT"),
		S3Bucket:         os.Getenv("VERDANT_S3_BUCKET"),
		S3Region:         envOr("VERDANT_S3_REGION", "auto"),
		S3AccessKey:      os.Getenv("VERDANT_S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("VERDANT_S3_SECRET_KEY"),
		BackupInterval:   durationOr("VERDANT_BACKUP_INTERVAL", 24*time.Hour),
		WeatherLatitude:  os.Getenv("VERDANT_WEATHER_LAT"),
		WeatherLongitude: os.Getenv("VERDANT_WEATHER_LON"),
		WeatherUnits:     envOr("VERDANT_WEATHER_UNITS", "celsius"),
		DiagnosisURL:     os.Getenv("VERDANT_DIAGNOSIS_URL"),
		DiagnosisAPIKey:  os.Getenv("VERDANT_DIAGNOSIS_API_KEY"),
		DiagnosisModel:   envOr("VERDANT_DIAGNOSIS_MODEL", "gpt-4o-mini"),
		VAPIDPublicKey:   os.Getenv("VERDANT_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:  os.Getenv("VERDANT_VAPID_PRIVATE_KEY"),
		VAPIDSubject:     envOr("VERDANT_VAPID_SUBJECT", "mailto:admin@verdant.local"),
	}
	if origins := os.Getenv("VERDANT_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// CookieConfig translates the deployment settings into cookie attributes.
// Secure is forced on in production.
func (c Config) CookieConfig() credential.CookieConfig {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return credential.CookieConfig{
		Secure:   c.Production(),
		SameSite: sameSite,
		Domain:   c.CookieDomain,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
