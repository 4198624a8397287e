package config

import (
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`

	// Analytics
	PosthogAPIKey string `mapstructure:"POSTHOG_API_KEY"`

	// Payments
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentCurrency     string `mapstructure:"PAYMENT_CURRENCY"`

	// Staff seat policy. StaffFreeSeats falls back to 0 (every seat billable)
	// when the env value is missing or not a non-negative integer.
	StaffFreeSeats      int
	StaffSeatPrice      decimal.Decimal
	PackageBasicPrice   decimal.Decimal
	PackagePremiumPrice decimal.Decimal

	// Password reset
	PasswordResetTokenTTL time.Duration

	// Transactional email (SMTP)
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUsername    string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	SMTPFromAddress string `mapstructure:"SMTP_FROM_ADDRESS"`
	SMTPFromName    string `mapstructure:"SMTP_FROM_NAME"`

	// Course CMS (Sanity)
	SanityProjectID  string `mapstructure:"SANITY_PROJECT_ID"`
	SanityDataset    string `mapstructure:"SANITY_DATASET"`
	SanityAPIToken   string `mapstructure:"SANITY_API_TOKEN"`
	SanityAPIVersion string `mapstructure:"SANITY_API_VERSION"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "skillgrove-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYMENT_CURRENCY", "USD")
	viper.SetDefault("STAFF_FREE_SEATS", "")
	viper.SetDefault("STAFF_SEAT_PRICE", "")
	viper.SetDefault("PACKAGE_BASIC_PRICE", "")
	viper.SetDefault("PACKAGE_PREMIUM_PRICE", "")
	viper.SetDefault("PASSWORD_RESET_TOKEN_TTL", "24h")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM_ADDRESS", "no-reply@skillgrove.app")
	viper.SetDefault("SMTP_FROM_NAME", "Skillgrove")
	viper.SetDefault("SANITY_PROJECT_ID", "")
	viper.SetDefault("SANITY_DATASET", "production")
	viper.SetDefault("SANITY_API_TOKEN", "")
	viper.SetDefault("SANITY_API_VERSION", "2024-05-01")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiryDuration, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiryDuration = time.Hour * 24 * 7
		log.Printf("Warning: Invalid value for REFRESH_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", refreshExpiryStr, refreshExpiryDuration)
	}
	cfg.RefreshTokenExpiryDuration = refreshExpiryDuration
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	cfg.StripeSecretKey = viper.GetString("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	cfg.PaymentCurrency = viper.GetString("PAYMENT_CURRENCY")
	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set. Checkout will not function.")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET not set. Webhook verification will reject all deliveries.")
	}

	// Seat policy values fail closed: an unparseable limit means no free
	// seats, an unparseable price stays zero and blocks checkout creation.
	freeSeatsStr := viper.GetString("STAFF_FREE_SEATS")
	freeSeats, err := strconv.Atoi(freeSeatsStr)
	if err != nil || freeSeats < 0 {
		if freeSeatsStr != "" {
			log.Printf("Warning: Invalid value for STAFF_FREE_SEATS ('%s'). Treating every seat as billable.\n", freeSeatsStr)
		}
		freeSeats = 0
	}
	cfg.StaffFreeSeats = freeSeats

	cfg.StaffSeatPrice = parsePrice("STAFF_SEAT_PRICE")
	cfg.PackageBasicPrice = parsePrice("PACKAGE_BASIC_PRICE")
	cfg.PackagePremiumPrice = parsePrice("PACKAGE_PREMIUM_PRICE")

	resetTTLStr := viper.GetString("PASSWORD_RESET_TOKEN_TTL")
	resetTTL, err := time.ParseDuration(resetTTLStr)
	if err != nil {
		resetTTL = time.Hour * 24
		log.Printf("Warning: Invalid value for PASSWORD_RESET_TOKEN_TTL ('%s'). Defaulting to %s.\n", resetTTLStr, resetTTL)
	}
	cfg.PasswordResetTokenTTL = resetTTL

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUsername = viper.GetString("SMTP_USERNAME")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.SMTPFromAddress = viper.GetString("SMTP_FROM_ADDRESS")
	cfg.SMTPFromName = viper.GetString("SMTP_FROM_NAME")
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Transactional email will be logged and dropped.")
	}

	cfg.SanityProjectID = viper.GetString("SANITY_PROJECT_ID")
	cfg.SanityDataset = viper.GetString("SANITY_DATASET")
	cfg.SanityAPIToken = viper.GetString("SANITY_API_TOKEN")
	cfg.SanityAPIVersion = viper.GetString("SANITY_API_VERSION")
	if cfg.SanityProjectID == "" {
		log.Println("Warning: SANITY_PROJECT_ID not set. Course preview will fall back to published content.")
	}

	return cfg, nil
}

// parsePrice reads a decimal price from the environment, returning zero when
// the value is missing or unparseable.
func parsePrice(key string) decimal.Decimal {
	raw := viper.GetString(key)
	if raw == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Treating as unset.\n", key, raw)
		return decimal.Zero
	}
	return price
}
