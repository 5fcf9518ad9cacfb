package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreSpanner = "spanner"
	StoreMemory  = "memory"
)

type Config struct {
	HTTP      HTTP
	Logger    Logger
	Store     Store
	Billing   Billing
	Scheduler Scheduler
	Rates     Rates
	Gateway   Gateway
	Kafka     Kafka
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Logger struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type Store struct {
	Driver    string `env:"STORE_DRIVER" envDefault:"spanner"`
	SpannerDB string `env:"SPANNER_DATABASE" envDefault:"projects/test-project/instances/dev-instance/databases/billing-db"`
}

type Billing struct {
	BaseCurrency string `env:"BILLING_BASE_CURRENCY" envDefault:"EUR"`
	// BeforeDays is how far ahead of a service end the roller bills it.
	BeforeDays      int      `env:"BILLING_BEFORE_DAYS" envDefault:"5"`
	NotifyDays      int      `env:"BILLING_NOTIFY_DAYS" envDefault:"3"`
	DisableDays     int      `env:"BILLING_DISABLE_GRACE_DAYS" envDefault:"7"`
	NoteLanguages   []string `env:"BILLING_NOTE_LANGUAGES" envDefault:"en,de,ru"`
	OutboxBatchSize int      `env:"BILLING_OUTBOX_BATCH_SIZE" envDefault:"100"`
	// OutboxRetention of zero keeps processed events forever.
	OutboxRetention time.Duration `env:"BILLING_OUTBOX_RETENTION" envDefault:"168h"`
}

type Scheduler struct {
	Enabled  bool   `env:"SCHEDULER_ENABLED" envDefault:"true"`
	Advance  string `env:"SCHEDULER_ADVANCE" envDefault:"@every 10m"`
	Activate string `env:"SCHEDULER_ACTIVATE" envDefault:"@every 10m"`
	Notify   string `env:"SCHEDULER_NOTIFY" envDefault:"@daily"`
	Disable  string `env:"SCHEDULER_DISABLE" envDefault:"@daily"`
	Outbox   string `env:"SCHEDULER_OUTBOX" envDefault:"@every 1m"`
}

type Rates struct {
	URL       string        `env:"RATES_URL" envDefault:""`
	Timeout   time.Duration `env:"RATES_TIMEOUT" envDefault:"5s"`
	MaxStale  time.Duration `env:"RATES_MAX_STALE" envDefault:"24h"`
	CacheSize int           `env:"RATES_CACHE_SIZE" envDefault:"256"`
	TTL       time.Duration `env:"RATES_TTL" envDefault:"1h"`
}

type Gateway struct {
	// URL of the payment provider; empty confirms charges manually.
	URL         string        `env:"GATEWAY_URL" envDefault:""`
	APIKey      string        `env:"GATEWAY_API_KEY" envDefault:""`
	Timeout     time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`
	// ChargeLease is how long an unfinished charge blocks another attempt.
	ChargeLease time.Duration `env:"GATEWAY_CHARGE_LEASE" envDefault:"2m"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:""`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"billing.events"`
}

// New loads the optional env file at envPath and parses the environment.
func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreSpanner, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Billing.BeforeDays < 0 || c.Billing.NotifyDays < 0 || c.Billing.DisableDays < 0 {
		return errors.New("billing day windows must not be negative")
	}
	if c.Billing.OutboxBatchSize <= 0 {
		return errors.New("outbox batch size must be positive")
	}
	if c.Rates.CacheSize <= 0 {
		return errors.New("rates cache size must be positive")
	}
	return nil
}
