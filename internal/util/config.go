package util

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"

	ImageProviderImgBB      = "imgbb"
	ImageProviderCloudinary = "cloudinary"

	EnvironmentProduction = "production"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment             string        `mapstructure:"ENVIRONMENT"`
	AllowedOrigins          []string      `mapstructure:"ALLOWED_ORIGINS"`
	HTTPServerAddress       string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	TokenSecretKey          string        `mapstructure:"TOKEN_SECRET_KEY"`
	AccessTokenDuration     time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseWebAPIKey       string        `mapstructure:"FIREBASE_WEB_API_KEY"`
	RedisServerAddress      string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	MailProvider            string        `mapstructure:"MAIL_PROVIDER"`
	ResendAPIKey            string        `mapstructure:"RESEND_API_KEY"`
	MailSenderName          string        `mapstructure:"MAIL_SENDER_NAME"`
	MailSenderAddress       string        `mapstructure:"MAIL_SENDER_ADDRESS"`
	SMTPHost                string        `mapstructure:"SMTP_HOST"`
	SMTPPort                int           `mapstructure:"SMTP_PORT"`
	SMTPUsername            string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword            string        `mapstructure:"SMTP_PASSWORD"`
	ImageProvider           string        `mapstructure:"IMAGE_PROVIDER"`
	ImgBBAPIKey             string        `mapstructure:"IMGBB_API_KEY"`
	CloudinaryURL           string        `mapstructure:"CLOUDINARY_URL"`
	DiscordBotToken         string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID        string        `mapstructure:"DISCORD_CHANNEL_ID"`
	NationalIDSecret        string        `mapstructure:"NATIONAL_ID_SECRET"`
	VerificationCodeTTL     time.Duration `mapstructure:"VERIFICATION_CODE_TTL"`
	CodeResendInterval      time.Duration `mapstructure:"CODE_RESEND_INTERVAL"`
}

// IsProduction reports whether the server runs with production settings.
func (config Config) IsProduction() bool {
	return config.Environment == EnvironmentProduction
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	// Set defaults for non-sensitive config
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("ACCESS_TOKEN_DURATION", "24h")
	v.SetDefault("MAIL_PROVIDER", MailProviderResend)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("IMAGE_PROVIDER", ImageProviderImgBB)
	v.SetDefault("VERIFICATION_CODE_TTL", "15m")
	v.SetDefault("CODE_RESEND_INTERVAL", "60s")

	// Every key must be known to viper for AutomaticEnv to pick it up during Unmarshal
	for _, key := range []string{
		"TOKEN_SECRET_KEY", "FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS_FILE", "FIREBASE_WEB_API_KEY",
		"REDIS_SERVER_ADDRESS", "RESEND_API_KEY", "MAIL_SENDER_NAME", "MAIL_SENDER_ADDRESS",
		"SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD", "IMGBB_API_KEY", "CLOUDINARY_URL",
		"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "NATIONAL_ID_SECRET",
	} {
		v.SetDefault(key, "")
	}

	// Prefer environment variables over config file
	v.AutomaticEnv()

	// Load config file
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err = v.ReadInConfig(); err != nil {
		return
	}

	// Unmarshal config into struct
	err = v.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if len(config.TokenSecretKey) < 32 {
		return fmt.Errorf("TOKEN_SECRET_KEY must be at least 32 characters")
	}
	if config.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if config.FirebaseWebAPIKey == "" {
		return fmt.Errorf("FIREBASE_WEB_API_KEY is required")
	}
	if config.RedisServerAddress == "" {
		return fmt.Errorf("REDIS_SERVER_ADDRESS is required")
	}
	if config.NationalIDSecret == "" {
		return fmt.Errorf("NATIONAL_ID_SECRET is required")
	}
	if config.MailSenderAddress == "" {
		return fmt.Errorf("MAIL_SENDER_ADDRESS is required")
	}

	switch config.MailProvider {
	case MailProviderResend:
		if config.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when MAIL_PROVIDER is %s", MailProviderResend)
		}
	case MailProviderSMTP:
		if config.SMTPHost == "" || config.SMTPUsername == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_USERNAME are required when MAIL_PROVIDER is %s", MailProviderSMTP)
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", config.MailProvider)
	}

	switch config.ImageProvider {
	case ImageProviderImgBB:
		if config.ImgBBAPIKey == "" {
			return fmt.Errorf("IMGBB_API_KEY is required when IMAGE_PROVIDER is %s", ImageProviderImgBB)
		}
	case ImageProviderCloudinary:
		if config.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required when IMAGE_PROVIDER is %s", ImageProviderCloudinary)
		}
	default:
		return fmt.Errorf("unsupported IMAGE_PROVIDER %q", config.ImageProvider)
	}

	return nil
}
