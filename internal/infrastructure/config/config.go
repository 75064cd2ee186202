package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

const (
	envPrefix      = "LOAND_"
	envConfigPath  = "LOAND_CONFIG"
	defaultCfgPath = "configs/loand.yaml"
)

type Config struct {
	ServiceName string `koanf:"service_name"`

	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Kafka         KafkaConfig         `koanf:"kafka"`
	Redis         RedisConfig         `koanf:"redis"`
	S3            S3Config            `koanf:"s3"`
	Reports       ReportsConfig       `koanf:"reports"`
	Scheduler     SchedulerConfig     `koanf:"scheduler"`
	Notifications NotificationsConfig `koanf:"notifications"`
	LateFees      LateFeesConfig      `koanf:"late_fees"`
	Auth          AuthConfig          `koanf:"auth"`
	Log           LogConfig           `koanf:"log"`
	Telemetry     TelemetryConfig     `koanf:"telemetry"`
}

type ServerConfig struct {
	GRPCPort        int           `koanf:"grpc_port"`
	HTTPPort        int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	TLSClientCAFile string        `koanf:"tls_client_ca_file"`
	Reflection      bool          `koanf:"reflection"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver        string `koanf:"driver"`
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	Name          string `koanf:"name"`
	SSLMode       string `koanf:"sslmode"`
	MaxConns      int32  `koanf:"max_conns"`
	MinConns      int32  `koanf:"min_conns"`
	MigrationsDir string `koanf:"migrations_dir"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

type KafkaConfig struct {
	Enabled            bool     `koanf:"enabled"`
	Brokers            []string `koanf:"brokers"`
	EventsTopic        string   `koanf:"events_topic"`
	AuditTopic         string   `koanf:"audit_topic"`
	NotificationsTopic string   `koanf:"notifications_topic"`

	TLS           bool   `koanf:"tls"`
	SASLMechanism string `koanf:"sasl_mechanism"`
	SASLUsername  string `koanf:"sasl_username"`
	SASLPassword  string `koanf:"sasl_password"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type S3Config struct {
	Bucket   string `koanf:"bucket"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
	Prefix   string `koanf:"prefix"`
}

type ReportsConfig struct {
	// Backend is "file", "redis" or "s3".
	Backend       string `koanf:"backend"`
	Dir           string `koanf:"dir"`
	TopDefaulters int    `koanf:"top_defaulters"`
}

type SchedulerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	Interval            time.Duration `koanf:"interval"`
	DailyAt             string        `koanf:"daily_at"`
	ReminderLeadDays    int           `koanf:"reminder_lead_days"`
	OverdueReminderDays []int         `koanf:"overdue_reminder_days"`
	Actor               string        `koanf:"actor"`
}

type NotificationsConfig struct {
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// LateFeesConfig holds percentages of the payment amount.
type LateFeesConfig struct {
	BasePct   float64 `koanf:"base_pct"`
	DailyPct  float64 `koanf:"daily_pct"`
	CapPct    float64 `koanf:"cap_pct"`
	GraceDays int     `koanf:"grace_days"`
}

// Policy converts the settings into the domain late fee policy.
func (c LateFeesConfig) Policy() model.LateFeePolicy {
	return model.LateFeePolicy{
		BasePct:   decimal.NewFromFloat(c.BasePct),
		DailyPct:  decimal.NewFromFloat(c.DailyPct),
		CapPct:    decimal.NewFromFloat(c.CapPct),
		GraceDays: c.GraceDays,
	}
}

type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Secret        string `koanf:"secret"`
	PublicKeyFile string `koanf:"public_key_file"`
	Issuer        string `koanf:"issuer"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate"`
}

// Defaults returns the configuration used when neither file nor environment
// set a value.
func Defaults() Config {
	return Config{
		ServiceName: "loand",
		Server: ServerConfig{
			GRPCPort:        9090,
			HTTPPort:        8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        "postgres",
			Host:          "localhost",
			Port:          5432,
			User:          "loand",
			Name:          "loans",
			SSLMode:       "require",
			MaxConns:      10,
			MigrationsDir: "file://internal/infrastructure/persistence/postgres/migrations",

			ConnectTimeout: 5 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:            []string{"localhost:9092"},
			EventsTopic:        "loans.events",
			AuditTopic:         "loans.audit",
			NotificationsTopic: "loans.notifications",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "reports",
		},
		Reports: ReportsConfig{
			Backend:       "file",
			Dir:           "reports",
			TopDefaulters: 5,
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			Interval:            time.Minute,
			DailyAt:             "00:05",
			ReminderLeadDays:    7,
			OverdueReminderDays: []int{1, 3, 7, 15, 30},
			Actor:               "system",
		},
		Notifications: NotificationsConfig{
			RatePerSecond: 20,
			Burst:         40,
		},
		LateFees: LateFeesConfig{
			BasePct:   5,
			DailyPct:  0.1,
			CapPct:    30,
			GraceDays: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1,
		},
	}
}

// Load reads defaults, then the YAML file named by LOAND_CONFIG (or
// configs/loand.yaml when present), then LOAND_* environment variables.
// Nested keys use a double underscore: LOAND_DATABASE__MAX_CONNS.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	path, explicit := os.LookupEnv(envConfigPath)
	if !explicit {
		path = defaultCfgPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	if s == envConfigPath {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Password == "" {
			errs = append(errs, errors.New("database.password is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: want postgres or memory", c.Database.Driver))
	}

	switch c.Reports.Backend {
	case "file":
		if c.Reports.Dir == "" {
			errs = append(errs, errors.New("reports.dir is required for the file backend"))
		}
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis report backend"))
		}
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required for the s3 report backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("reports.backend %q: want file, redis or s3", c.Reports.Backend))
	}
	if c.Reports.TopDefaulters < 0 {
		errs = append(errs, errors.New("reports.top_defaulters must not be negative"))
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.Interval <= 0 {
			errs = append(errs, errors.New("scheduler.interval must be positive"))
		}
		if _, err := time.Parse("15:04", c.Scheduler.DailyAt); err != nil {
			errs = append(errs, fmt.Errorf("scheduler.daily_at %q: want HH:MM", c.Scheduler.DailyAt))
		}
		for _, d := range c.Scheduler.OverdueReminderDays {
			if d <= 0 {
				errs = append(errs, fmt.Errorf("scheduler.overdue_reminder_days: %d is not positive", d))
			}
		}
	}

	if c.Notifications.RatePerSecond < 0 || c.Notifications.Burst < 0 {
		errs = append(errs, errors.New("notifications rate and burst must not be negative"))
	}
	if c.LateFees.GraceDays < 0 || c.LateFees.BasePct < 0 || c.LateFees.DailyPct < 0 || c.LateFees.CapPct < 0 {
		errs = append(errs, errors.New("late_fees settings must not be negative"))
	}

	if c.Auth.Enabled && c.Auth.Secret == "" && c.Auth.PublicKeyFile == "" {
		errs = append(errs, errors.New("auth.secret or auth.public_key_file is required when auth is enabled"))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if c.Server.TLSClientCAFile != "" && c.Server.TLSCertFile == "" {
		errs = append(errs, errors.New("server.tls_client_ca_file requires server.tls_cert_file"))
	}

	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.Server.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}
