package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/app"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/audit"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/config"
	infrakafka "github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/kafka"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/notification"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/persistence/memory"
	pgpersistence "github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/persistence/postgres"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/reportstore"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/presentation/rest"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/auth"
	pkgkafka "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/kafka"
	pkgpostgres "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/postgres"
)

// storage carries the repositories and their readiness checks. Reports,
// Clock and Effects are filled in by main.
type storage struct {
	ports  app.Ports
	checks map[string]rest.Check
	close  func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			ports: app.Ports{
				Loans:      store.Loans(),
				Payments:   store.Payments(),
				Documents:  store.Documents(),
				UnitOfWork: store.UnitOfWork(),
			},
			checks: map[string]rest.Check{},
			close:  func() {},
		}, nil
	}

	pgCfg := pkgpostgres.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}
	pool, err := pkgpostgres.NewPool(ctx, pgCfg)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL")

	version, err := pkgpostgres.RunMigrations(pgCfg.DSN(), cfg.Database.MigrationsDir)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	logger.Info("database migrations complete", "version", version)

	return &storage{
		ports: app.Ports{
			Loans:      pgpersistence.NewLoanRepo(pool),
			Payments:   pgpersistence.NewPaymentRepo(pool),
			Documents:  pgpersistence.NewDocumentRepo(pool),
			UnitOfWork: pgpersistence.NewUnitOfWork(pool),
		},
		checks: map[string]rest.Check{
			"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		},
		close: pool.Close,
	}, nil
}

func openReportStore(ctx context.Context, cfg config.Config) (port.ReportStore, func(), error) {
	switch cfg.Reports.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return reportstore.NewRedisStore(client, cfg.Redis.TTL), func() { _ = client.Close() }, nil

	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
				o.UsePathStyle = true
			}
		})
		return reportstore.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix), func() {}, nil

	default:
		return reportstore.NewFileStore(cfg.Reports.Dir), func() {}, nil
	}
}

// sinks are the audit, notification and event outlets. Without Kafka,
// audit entries and notifications go to the log and events are dropped.
type sinks struct {
	audit     port.AuditRecorder
	notifier  port.Notifier
	publisher port.EventPublisher
	close     func()
}

func openSinks(cfg config.Config, logger *slog.Logger) (*sinks, error) {
	rate, burst := cfg.Notifications.RatePerSecond, cfg.Notifications.Burst
	if !cfg.Kafka.Enabled {
		return &sinks{
			audit:    audit.NewLogRecorder(logger),
			notifier: notification.NewRateLimited(notification.NewLogNotifier(logger), rate, burst),
			close:    func() {},
		}, nil
	}

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		ClientID:      cfg.ServiceName,
		Brokers:       cfg.Kafka.Brokers,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	logger.Info("kafka producer ready", "brokers", cfg.Kafka.Brokers)

	return &sinks{
		audit:     infrakafka.NewAuditRecorder(producer, cfg.Kafka.AuditTopic),
		notifier:  notification.NewRateLimited(infrakafka.NewNotifier(producer, cfg.Kafka.NotificationsTopic), rate, burst),
		publisher: infrakafka.NewEventPublisher(producer, cfg.Kafka.EventsTopic, logger),
		close: func() {
			if err := producer.Close(); err != nil {
				logger.Error("kafka producer close", "error", err)
			}
		},
	}, nil
}

// newJWTService returns nil when authentication is disabled.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	jwtCfg := auth.JWTConfig{
		Secret: cfg.Secret,
		Issuer: cfg.Issuer,
	}
	if cfg.PublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	return auth.NewJWTService(jwtCfg)
}
