package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración del servicio.
// Orden de carga: defaults -> archivo YAML (CONFIG_FILE) -> variables de entorno.
type Config struct {
	Port    string `yaml:"port"`
	AppName string `yaml:"app_name"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`

	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		JWKSURL       string `yaml:"jwks_url"`
		GoTrueURL     string `yaml:"gotrue_url"`
		GoTrueAPIKey  string `yaml:"gotrue_api_key"`
		AdminRoleName string `yaml:"admin_role_name"`
	} `yaml:"auth"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Geocoder struct {
		BaseURL   string        `yaml:"base_url"`
		UserAgent string        `yaml:"user_agent"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"geocoder"`

	GenAI struct {
		APIKey         string  `yaml:"api_key"`
		Model          string  `yaml:"model"`
		Dimensions     int     `yaml:"dimensions"`
		MatchThreshold float64 `yaml:"match_threshold"`
	} `yaml:"genai"`

	S3 struct {
		Bucket        string `yaml:"bucket"`
		Region        string `yaml:"region"`
		PublicBaseURL string `yaml:"public_base_url"`
		Endpoint      string `yaml:"endpoint"`
	} `yaml:"s3"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	QRBaseURL     string `yaml:"qr_base_url"`
	PublicBaseURL string `yaml:"public_base_url"`
}

func defaults() *Config {
	c := &Config{
		Port:          "8080",
		AppName:       "pet-reunite",
		QRBaseURL:     "https://api.qrserver.com/v1/create-qr-code/",
		PublicBaseURL: "http://localhost:5173",
	}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Auth.AdminRoleName = "admin"
	c.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	c.Geocoder.UserAgent = "pet-reunite/1.0"
	c.Geocoder.CacheTTL = 24 * time.Hour
	c.GenAI.Model = "gemini-embedding-001"
	c.GenAI.Dimensions = 768
	c.GenAI.MatchThreshold = 0.75
	c.Kafka.Topic = "pet-reunite.events"
	return c
}

// Load arma la configuración. Un .env ausente no es error (normal en producción).
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := c.loadYAML(path); err != nil {
			return nil, err
		}
	}

	c.applyEnv()

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.AppName = getEnvOrDefault("APP_NAME", c.AppName)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	c.DB.DSN = getEnvOrDefault("DB_DSN", c.DB.DSN)

	c.Auth.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWKSURL = getEnvOrDefault("AUTH_JWKS_URL", c.Auth.JWKSURL)
	c.Auth.GoTrueURL = getEnvOrDefault("AUTH_GOTRUE_URL", c.Auth.GoTrueURL)
	c.Auth.GoTrueAPIKey = getEnvOrDefault("AUTH_GOTRUE_API_KEY", c.Auth.GoTrueAPIKey)

	c.Redis.URL = getEnvOrDefault("REDIS_URL", c.Redis.URL)

	c.Geocoder.BaseURL = getEnvOrDefault("GEOCODER_BASE_URL", c.Geocoder.BaseURL)
	c.Geocoder.UserAgent = getEnvOrDefault("GEOCODER_USER_AGENT", c.Geocoder.UserAgent)
	c.Geocoder.CacheTTL = getEnvAsDurationOrDefault("GEOCODER_CACHE_TTL", c.Geocoder.CacheTTL)

	c.GenAI.APIKey = getEnvOrDefault("GENAI_API_KEY", c.GenAI.APIKey)
	c.GenAI.Model = getEnvOrDefault("GENAI_MODEL", c.GenAI.Model)
	c.GenAI.Dimensions = getEnvAsIntOrDefault("GENAI_DIMENSIONS", c.GenAI.Dimensions)
	c.GenAI.MatchThreshold = getEnvAsFloatOrDefault("MATCH_THRESHOLD", c.GenAI.MatchThreshold)

	c.S3.Bucket = getEnvOrDefault("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnvOrDefault("S3_REGION", c.S3.Region)
	c.S3.PublicBaseURL = getEnvOrDefault("S3_PUBLIC_BASE_URL", c.S3.PublicBaseURL)
	c.S3.Endpoint = getEnvOrDefault("S3_ENDPOINT", c.S3.Endpoint)

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	c.Kafka.Topic = getEnvOrDefault("KAFKA_TOPIC", c.Kafka.Topic)

	c.QRBaseURL = getEnvOrDefault("QR_BASE_URL", c.QRBaseURL)
	c.PublicBaseURL = getEnvOrDefault("PUBLIC_BASE_URL", c.PublicBaseURL)
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: invalid PORT %q", c.Port)
	}
	if c.GenAI.MatchThreshold < 0 || c.GenAI.MatchThreshold > 1 {
		return fmt.Errorf("config: MATCH_THRESHOLD must be between 0 and 1")
	}
	return nil
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
