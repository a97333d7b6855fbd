/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/messagely/apiserver/config"
	"github.com/messagely/apiserver/internal/logger"
	"github.com/messagely/apiserver/internal/mq"
	"github.com/messagely/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// notifyCmd runs the delivery-notification worker. It consumes the
// lifecycle events the API server publishes and is the integration
// point for push/email delivery channels.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Runs the delivery-notification worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := logger.New("notify")

		broker, err := mq.NewFromConfig(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if broker == nil {
			return fmt.Errorf("no event broker configured")
		}
		defer func() {
			_ = broker.Close()
		}()

		log.Info().Str("channel", services.ChannelMessageCreated).Msg("notification worker subscribing")
		err = broker.Subscribe(cmd.Context(), services.ChannelMessageCreated, func(ctx context.Context, event mq.Event) error {
			var payload struct {
				ID           int64  `json:"id"`
				FromUsername string `json:"from_username"`
				ToUsername   string `json:"to_username"`
			}
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				log.Err(err).Str("event_id", event.ID).Msg("malformed event, dropping")
				return nil
			}
			log.Info().
				Int64("message_id", payload.ID).
				Str("to", payload.ToUsername).
				Msg("new message notification")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "notify worker error: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
