package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sage/config"
	"github.com/Ramsey-B/sage/internal/repositories/canonicalitem"
	"github.com/Ramsey-B/sage/internal/repositories/ingredientref"
	"github.com/Ramsey-B/sage/pkg/curator"
	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/events"
)

var cfg config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "sage",
		Short: "Canonical ingredient vocabulary service",
		Long:  "Sage normalizes free-text ingredient phrases, resolves them against a canonical vocabulary, and applies curated vocabulary changes across all referencing tables.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if err := ectoenv.BindEnv(&cfg); err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		resolveCmd(),
		curateCmd(),
		serveCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() ectologger.Logger {
	var zlog *zap.Logger
	if cfg.PrettyLogs {
		zlog, _ = zap.NewDevelopment()
	} else {
		zlog, _ = zap.NewProduction()
	}
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		zlog.Info("log", zap.Any("entry", msg))
	})
}

func connectDatabase(ctx context.Context, logger ectologger.Logger) (database.DB, error) {
	return database.Connect(ctx, database.ConnectConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
}

// newPublisher returns the Kafka producer, or nil when publishing is
// disabled. A nil publisher silently disables vocabulary events.
func newPublisher(logger ectologger.Logger) curator.Publisher {
	if !cfg.KafkaProducerEnabled || len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	return events.NewProducer(events.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaVocabularyTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
}

func newItemRepository(db database.DB, logger ectologger.Logger) *canonicalitem.Repository {
	return canonicalitem.NewRepository(db, logger)
}

func newRefRepository(db database.DB, logger ectologger.Logger) *ingredientref.Repository {
	return ingredientref.NewRepository(db, logger)
}
