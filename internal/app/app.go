// Package app wires configuration into stores, the event dispatcher and the
// matching engine. Both binaries share it.
package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"fieldmatch-backend/internal/config"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/notify"
	"fieldmatch-backend/internal/repository"
	"fieldmatch-backend/internal/repository/memory"
	"fieldmatch-backend/internal/repository/postgres"
	"fieldmatch-backend/internal/service"
)

// Backend holds the opened store and whatever must be closed with it.
type Backend struct {
	Requests      repository.MatchRequestRepository
	Participants  repository.ParticipantRepository
	Bookings      repository.BookingGateway
	Users         repository.UserDirectory
	Notifications repository.NotificationRepository
	// Pinger is nil for the memory store.
	Pinger interface{ Ping(ctx context.Context) error }

	closers []func() error
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("Failed to close resource", "error", err)
		}
	}
}

// OpenBackend opens the configured store, migrating or seeding it as asked.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Type {
	case "memory":
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.Storage.SeedFile); err != nil {
				return nil, err
			}
			logger.Info("Memory store seeded", "file", cfg.Storage.SeedFile)
		}
		return &Backend{
			Requests:      store.MatchRequestRepository,
			Participants:  store.ParticipantRepository,
			Bookings:      store.BookingGateway,
			Users:         store.UserDirectory,
			Notifications: store.NotificationRepository,
		}, nil

	case "postgres":
		logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.MaxConns > 0 {
			db.SetMaxOpenConns(cfg.Database.MaxConns)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")

		store := postgres.NewStore(db)
		if cfg.Storage.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("Database schema applied")
		}
		return &Backend{
			Requests:      store.MatchRequestRepository,
			Participants:  store.ParticipantRepository,
			Bookings:      store.BookingGateway,
			Users:         store.UserDirectory,
			Notifications: store.NotificationRepository,
			Pinger:        store,
			closers:       []func() error{db.Close},
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
}

// NewDispatcher builds the event dispatcher with every enabled sink. The
// kafka writer, if any, is closed with the backend.
func NewDispatcher(cfg *config.Config, b *Backend) *notify.Dispatcher {
	var sinks []notify.Sink

	if cfg.Notifier.InApp {
		sinks = append(sinks, notify.NewInAppSink(b.Notifications))
	}

	switch cfg.Notifier.EmailProvider {
	case "smtp":
		sender := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
		sinks = append(sinks, notify.NewEmailSink(b.Users, sender))
		logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
	case "sendgrid":
		sender := notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
		sinks = append(sinks, notify.NewEmailSink(b.Users, sender))
		logger.Info("SendGrid email enabled", "from", cfg.SendGrid.From)
	}

	if cfg.Kafka.Enabled {
		sink := notify.NewKafkaSink(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), cfg.Kafka.Topic)
		sinks = append(sinks, sink)
		b.closers = append(b.closers, sink.Close)
		logger.Info("Kafka event sink enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	return notify.NewDispatcher(cfg.Notifier.QueueSize, cfg.Notifier.Workers, cfg.Notifier.MaxRetries, sinks)
}

func NewMatchService(cfg *config.Config, b *Backend, events service.EventPublisher) service.MatchService {
	return service.NewMatchService(
		b.Requests,
		b.Participants,
		b.Bookings,
		b.Users,
		events,
		service.MatchPolicy{
			RequestTTL:  cfg.Matching.RequestTTL,
			JoinCutoff:  cfg.Matching.JoinCutoff,
			MaxPageSize: cfg.Matching.MaxPageSize,
		},
	)
}
