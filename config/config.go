package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	Env               string        `mapstructure:"ENV"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTTTL            time.Duration `mapstructure:"JWT_TTL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Proxies allowed to set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB         int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCompletionQueueDB int    `mapstructure:"REDIS_COMPLETION_QUEUE_DB"`

	// Booking wizard.
	ServiceID       string        `mapstructure:"SERVICE_ID"`
	FetchTimeout    time.Duration `mapstructure:"FETCH_TIMEOUT"`
	CompletionDelay time.Duration `mapstructure:"COMPLETION_DELAY"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`

	// Payments.
	StripeKey            string `mapstructure:"STRIPE_KEY"`
	PaymentSigningSecret string `mapstructure:"PAYMENT_SIGNING_SECRET"`
	PaymentCurrency      string `mapstructure:"PAYMENT_CURRENCY"`

	// Third-party clients. Empty values disable the client.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	CloudinaryURL           string `mapstructure:"CLOUDINARY_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "maidbook")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TTL", "24h")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_COMPLETION_QUEUE_DB", 1)

	viper.SetDefault("SERVICE_ID", "maid")
	viper.SetDefault("FETCH_TIMEOUT", "10s")
	viper.SetDefault("COMPLETION_DELAY", "2s")
	viper.SetDefault("SESSION_TTL", "30m")

	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_SIGNING_SECRET", "")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")

	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("CLOUDINARY_URL", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Validate rejects settings that are unsafe to run with. In production the
// token and payment signing secrets must be set.
func Validate() error {
	if !IsProduction() {
		return nil
	}
	var errs []error
	if AppConfig.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if AppConfig.PaymentSigningSecret == "" {
		errs = append(errs, errors.New("PAYMENT_SIGNING_SECRET is required in production"))
	}
	if AppConfig.StripeKey == "" {
		errs = append(errs, errors.New("STRIPE_KEY is required in production"))
	}
	return errors.Join(errs...)
}
