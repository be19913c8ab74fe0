package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	ServerPort  string
	GinMode     string
	Environment string
	DebugSQL    bool

	DBDriver   string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBPath     string

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string

	OcrDefaultProvider string
	OcrTimeout         time.Duration
	OpenAIAPIKey       string
	OpenAIOcrModel     string
	OpenRouterAPIKey   string
	OpenRouterBaseURL  string
	OpenRouterOcrModel string

	ImportNotifyEmails []string

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
}

// AppSettings is populated by LoadSettings.
var AppSettings Settings

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_PATH", "data/magazines.db")
	v.SetDefault("OCR_DEFAULT_PROVIDER", "openai")
	v.SetDefault("OCR_TIMEOUT", "90s")
	v.SetDefault("OPENAI_OCR_MODEL", "gpt-4o")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("OPENROUTER_OCR_MODEL", "google/gemini-2.0-flash-001")
	v.SetDefault("SMTP_PORT", 587)
}

// LoadSettings loads .env (when present) and reads every setting from the environment.
func LoadSettings() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	AppSettings = SettingsFrom(viper.New())
	return AppSettings
}

// SettingsFrom reads settings through v, binding it to the process environment.
func SettingsFrom(v *viper.Viper) Settings {
	setDefaults(v)
	v.AutomaticEnv()

	timeout := v.GetDuration("OCR_TIMEOUT")
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return Settings{
		ServerPort:  v.GetString("SERVER_PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		Environment: strings.ToLower(v.GetString("ENVIRONMENT")),
		DebugSQL:    v.GetBool("DEBUG_SQL"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBDatabase: v.GetString("DB_DATABASE"),
		DBUsername: v.GetString("DB_USERNAME"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBPath:     v.GetString("DB_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTIssuer: v.GetString("JWT_ISSUER"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		OcrDefaultProvider: strings.ToLower(v.GetString("OCR_DEFAULT_PROVIDER")),
		OcrTimeout:         timeout,
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		OpenAIOcrModel:     v.GetString("OPENAI_OCR_MODEL"),
		OpenRouterAPIKey:   v.GetString("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:  v.GetString("OPENROUTER_BASE_URL"),
		OpenRouterOcrModel: v.GetString("OPENROUTER_OCR_MODEL"),

		ImportNotifyEmails: splitList(v.GetString("IMPORT_NOTIFY_EMAILS")),

		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUser:          v.GetString("SMTP_USER"),
		SMTPPass:          v.GetString("SMTP_PASS"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		SMTPSkipTLSVerify: v.GetString("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

// IsProduction reports whether ENVIRONMENT=production.
func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
