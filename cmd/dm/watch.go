package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/dungeonmaster/internal/events"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream entity changes for the current game",
	GroupID: "play",
	Args:    cobra.NoArgs,
	// Watching reads the event bus directly and needs no API client.
	PersistentPreRunE: localCommand,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: pass --nats, set DM_NATS_URL or add one to the active remote")
		}
		all, _ := cmd.Flags().GetBool("all")
		subject := events.AllSubjects
		if !all {
			if gameID == "" {
				return fmt.Errorf("--game (or DM_GAME_ID) is required unless --all is set")
			}
			subject = events.GameSubjects(gameID)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchNATS(ctx, cmd.OutOrStdout(), natsURL, subject)
	},
}

// watchNATS prints every entity change on subject until ctx is done.
func watchNATS(ctx context.Context, w io.Writer, natsURL, subject string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(subject)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printEvent(w, payload); err != nil {
				log.Printf("skipping event: %v", err)
			}
		}
	}
}

func printEvent(w io.Writer, payload []byte) error {
	evt, err := events.DecodeEntityUpdated(payload)
	if err != nil {
		return err
	}
	if jsonOutput {
		_, err := fmt.Fprintln(w, string(payload))
		return err
	}
	_, err = fmt.Fprintln(w, formatEvent(evt))
	return err
}

func formatEvent(evt events.EntityUpdated) string {
	target := evt.Kind
	if evt.ID != evt.GameID {
		target += "/" + evt.ID
	}
	return fmt.Sprintf("%s  %s  %s updated %s",
		ui.RenderMuted(formatStamp(evt.LastUpdated)),
		ui.RenderAccent(evt.GameID),
		evt.Actor,
		target,
	)
}

func init() {
	watchCmd.Flags().String("nats", envOr("DM_NATS_URL", activeRemote().NATSURL), "NATS server URL")
	watchCmd.Flags().Bool("all", false, "watch every game")
}
