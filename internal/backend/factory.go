// Package backend builds the storage and messaging collaborators selected
// by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"gofinances/internal/config"
	"gofinances/internal/events"
	eventsamqp "gofinances/internal/events/amqp"
	eventskafka "gofinances/internal/events/kafka"
	applog "gofinances/internal/log"
	"gofinances/internal/storage"
	"gofinances/internal/storage/memory"
	storageredis "gofinances/internal/storage/redis"
	"gofinances/internal/storage/sqlite"
)

// Factory creates backends based on configuration
type Factory struct {
	cfg    *config.Config
	logger *applog.Logger
}

func NewFactory(cfg *config.Config, logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{cfg: cfg, logger: logger.WithComponent(applog.ComponentApp)}
}

// Store opens the configured key-value store.
func (f *Factory) Store(ctx context.Context) (storage.Store, error) {
	switch f.cfg.StorageBackend {
	case config.StorageMemory:
		f.logger.Info("Initialized memory storage")
		return memory.New(), nil
	case config.StorageSQLite:
		s, err := sqlite.New(f.cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite storage: %w", err)
		}
		f.logger.Info("Initialized SQLite storage", "db_path", f.cfg.SQLiteDBPath)
		return s, nil
	case config.StorageRedis:
		s, err := storageredis.New(ctx, storageredis.Options{
			Addr:     f.cfg.RedisAddr,
			Password: f.cfg.RedisPassword,
			DB:       f.cfg.RedisDB,
			Prefix:   f.cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize Redis storage: %w", err)
		}
		f.logger.Info("Initialized Redis storage", "addr", f.cfg.RedisAddr, "db", f.cfg.RedisDB)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", f.cfg.StorageBackend)
	}
}

// Publisher connects to the configured broker. With no broker, or when the
// broker is unreachable, it returns events.Noop so writes keep working.
func (f *Factory) Publisher() events.Publisher {
	switch f.cfg.EventsBackend {
	case config.EventsAMQP:
		c, err := eventsamqp.NewClient(f.cfg.AMQPURL, f.cfg.AMQPExchange, f.cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP publisher, continuing without events", applog.FieldError, err.Error())
			return events.Noop{}
		}
		f.logger.Info("Initialized AMQP publisher", "exchange", f.cfg.AMQPExchange, "queue", f.cfg.AMQPQueue)
		return c
	case config.EventsKafka:
		f.logger.Info("Initialized Kafka publisher", "topic", f.cfg.KafkaTopic, "brokers", f.cfg.KafkaBrokers)
		return eventskafka.NewPublisher(f.cfg.KafkaBrokers, f.cfg.KafkaTopic, f.logger)
	default:
		f.logger.Info("Events disabled")
		return events.Noop{}
	}
}

// Consumer connects to the configured broker for the export worker.
func (f *Factory) Consumer() (events.Consumer, error) {
	switch f.cfg.EventsBackend {
	case config.EventsAMQP:
		c, err := eventsamqp.NewClient(f.cfg.AMQPURL, f.cfg.AMQPExchange, f.cfg.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize AMQP consumer: %w", err)
		}
		return c, nil
	case config.EventsKafka:
		return eventskafka.NewConsumer(f.cfg.KafkaBrokers, f.cfg.KafkaTopic, f.cfg.KafkaGroupID, f.logger), nil
	default:
		return nil, fmt.Errorf("no events backend configured")
	}
}

// ReadyCheck reports whether store answers reads.
func ReadyCheck(store storage.Store) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := store.Get(ctx, storage.ReadyKey)
		if err == nil || errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
}
