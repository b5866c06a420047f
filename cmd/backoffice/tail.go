package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tailGroup string

var tailCmd = &cobra.Command{
	Use:   "tail-activity",
	Short: "Print activity and stock events from Kafka until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS must be set")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer := events.NewConsumer(cfg.KafkaBrokers, tailGroup, cfg.Topic, logger)
		defer consumer.Close()

		consumer.RegisterHandler(func(_ context.Context, event events.Event) error {
			logger.Info("Event",
				zap.String("type", string(event.Type)),
				zap.Uint("entity_id", event.EntityID),
				zap.Time("occurred_at", event.OccurredAt),
				zap.Any("payload", event.Payload),
			)
			return nil
		})
		consumer.Start(ctx)
		<-consumer.Done()
		return nil
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailGroup, "group", "backoffice-tail", "Kafka consumer group")
}
