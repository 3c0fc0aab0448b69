package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	PasswordHasherArgon2 = "argon2"
	PasswordHasherBcrypt = "bcrypt"

	NotificationSenderConsole  = "console"
	NotificationSenderSES      = "ses"
	NotificationSenderSMTP     = "smtp"
	NotificationSenderRabbitmq = "rabbitmq"
)

type Config struct {
	IsTestMode bool   `env:"TEST_MODE" envDefault:"false"`
	Port       int    `env:"PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Secret     string `env:"SECRET"`

	// Errors are not reported to Sentry if empty.
	SentryDsn *url.URL `env:"SENTRY_DSN"`

	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	DBPoolMaxConns int32  `env:"DB_POOL_MAX_CONNS" envDefault:"10"`
	DBPoolMinConns int32  `env:"DB_POOL_MIN_CONNS" envDefault:"2"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Activation attempts are not rate limited if empty.
	RedisURL string `env:"REDIS_URL"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	PasswordHasher   string `env:"PASSWORD_HASHER" envDefault:"argon2"`
	BcryptHasherCost int    `env:"BCRYPT_HASHER_COST" envDefault:"10"`

	ActivationCodeTTL   time.Duration `env:"ACTIVATION_CODE_TTL" envDefault:"1m"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	NotificationTimeout time.Duration `env:"NOTIFICATION_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	NotificationSender string `env:"NOTIFICATION_SENDER" envDefault:"console"`

	AwsRegion                       string `env:"AWS_REGION"`
	AwsAccessKey                    string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                    string `env:"AWS_SECRET_KEY"`
	AwsEmailSender                  string `env:"AWS_EMAIL_SENDER"`
	AwsEmailActivateAccountTemplate string `env:"AWS_EMAIL_ACTIVATE_ACCOUNT_TEMPLATE" envDefault:"activate-account"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	RabbitmqURL                 string `env:"RABBITMQ_URL"`
	RabbitmqActivationCodeQueue string `env:"RABBITMQ_ACTIVATION_CODE_QUEUE" envDefault:"activation-codes"`
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are used if the file exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.PostgresqlURL == "" {
		return fmt.Errorf("POSTGRESQL_URL must be set")
	}
	switch c.PasswordHasher {
	case PasswordHasherArgon2, PasswordHasherBcrypt:
	default:
		return fmt.Errorf("invalid PASSWORD_HASHER value: %s", c.PasswordHasher)
	}

	switch c.NotificationSender {
	case NotificationSenderConsole:
	case NotificationSenderSES:
		if c.AwsRegion == "" || c.AwsEmailSender == "" {
			return fmt.Errorf("AWS_REGION and AWS_EMAIL_SENDER must be set for ses sender")
		}
	case NotificationSenderSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM must be set for smtp sender")
		}
	case NotificationSenderRabbitmq:
		if c.RabbitmqURL == "" {
			return fmt.Errorf("RABBITMQ_URL must be set for rabbitmq sender")
		}
	default:
		return fmt.Errorf("invalid NOTIFICATION_SENDER value: %s", c.NotificationSender)
	}

	if c.DBPoolMinConns > c.DBPoolMaxConns {
		return fmt.Errorf("DB_POOL_MIN_CONNS must not exceed DB_POOL_MAX_CONNS")
	}
	if c.ActivationCodeTTL <= 0 {
		return fmt.Errorf("ACTIVATION_CODE_TTL must be positive")
	}
	return nil
}
