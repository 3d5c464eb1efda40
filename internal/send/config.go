package send

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderLog      = "log"
	ProviderDev      = "dev"
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
	ProviderMailgun  = "mailgun"
)

// Config selects and configures the delivery backend. Secrets are read from
// the environment only.
type Config struct {
	Provider string `env:"NGE_SEND_PROVIDER" envDefault:"log"`
	From     string `env:"NGE_SEND_FROM" envDefault:"noreply@example.com"`
	DevDir   string `env:"NGE_SEND_DEV_DIR" envDefault:".nge/outbox"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	ResendAPIKey string `env:"RESEND_API_KEY"`

	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunRegion string `env:"MAILGUN_REGION" envDefault:"us"`
}

// LoadConfig loads the given .env files (missing files are skipped) into the
// process environment and parses Config from it. Variables already set in the
// environment win over .env entries.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}
