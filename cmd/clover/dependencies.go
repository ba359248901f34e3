package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/startup"
)

// dependencies holds the external connections. Fields are populated by boot.Start.
type dependencies struct {
	boot      *startup.Startup
	db        database.DB
	redis     *redis.Client
	producer  *events.Producer
	publisher events.Publisher
}

// newDependencies registers the database and its migrations, plus redis and kafka when enabled
// and withBrokers is set.
func newDependencies(cfg *config.Config, logger ectologger.Logger, withBrokers bool) *dependencies {
	deps := &dependencies{
		boot:      startup.NewStartup(logger, cfg.StartupMaxAttempts),
		publisher: events.NopPublisher{},
	}

	deps.boot.AddDependency(startup.Func{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			conn, err := sqlx.Open(cfg.DatabaseDriver, dataSourceName(cfg))
			if err != nil {
				return errors.Wrap(err, "failed to open database")
			}
			conn.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
			conn.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
			conn.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
			if err := conn.PingContext(ctx); err != nil {
				_ = conn.Close()
				return errors.Wrap(err, "failed to reach database")
			}
			deps.db = database.NewDatabaseInstance(conn, logger)
			return nil
		},
		StopFunc: func(context.Context) error {
			return deps.db.Close()
		},
	})

	if migrationsSupported(cfg.DatabaseDriver) {
		deps.boot.AddDependency(startup.Func{
			Name:     "migrations",
			Requires: []string{"database"},
			StartFunc: func(context.Context) error {
				instance, ok := deps.db.(*database.DatabaseInstance)
				if !ok {
					return errors.New("migrations need a sqlx backed database")
				}
				migrations := database.NewMigrationService(logger, &database.MigrationConfig{
					MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
					Version:             uint(cfg.DatabaseMigrationVersion),
					Force:               cfg.DatabaseMigrationForce,
					AutoRollback:        cfg.DatabaseMigrationAutoRollback,
					TablePrefix:         cfg.DatabaseTablePrefix,
				})
				return migrations.MigratePostgres(instance.DB.DB, cfg.DatabaseName)
			},
		})
	}

	if !withBrokers {
		return deps
	}

	if cfg.RedisEnabled {
		deps.boot.AddDependency(startup.Func{
			Name: "redis",
			StartFunc: func(ctx context.Context) error {
				client := redis.NewClient(&redis.Options{
					Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				})
				if err := client.Ping(ctx).Err(); err != nil {
					_ = client.Close()
					return errors.Wrap(err, "failed to connect to redis")
				}
				deps.redis = client
				return nil
			},
			StopFunc: func(context.Context) error {
				return deps.redis.Close()
			},
		})
	}

	if cfg.KafkaEnabled {
		deps.boot.AddDependency(startup.Func{
			Name: "kafka",
			StartFunc: func(context.Context) error {
				producer, err := events.NewProducer(events.ProducerConfig{
					Brokers:      cfg.KafkaBrokers,
					Topic:        cfg.KafkaOutputTopic,
					BatchSize:    cfg.KafkaBatchSize,
					BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
					RequiredAcks: cfg.KafkaRequiredAcks,
					Compression:  cfg.KafkaCompression,
				}, logger)
				if err != nil {
					return err
				}
				deps.producer = producer
				deps.publisher = producer
				return nil
			},
			StopFunc: func(context.Context) error {
				return deps.producer.Close()
			},
		})
	}

	return deps
}

// migrationsSupported reports whether db/pg migrations can run against driver.
func migrationsSupported(driver string) bool {
	return driver == "postgres"
}
