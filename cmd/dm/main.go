package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/dungeonmaster/internal/client"
	"github.com/alfredjeanlab/dungeonmaster/internal/identity"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

var (
	httpURL    string
	authToken  string
	gameID     string
	playerID   string
	dmDataID   string
	jsonOutput bool
	noColor    bool

	gameClient client.GameClient
)

func envOr(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

func defaultHTTPURL() string {
	if s := os.Getenv("DM_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemote().URL; u != "" {
		return u
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:           "dm <command>",
	Short:         "Dungeon master session tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupColor()
		if gameID == "" || playerID == "" {
			return fmt.Errorf("--game and --player (or DM_GAME_ID and DM_PLAYER_ID) are required")
		}
		gameClient = newClient()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if gameClient != nil {
			gameClient.Close()
		}
	},
}

func newClient() client.GameClient {
	return client.NewHTTPClient(httpURL, authToken, identity.Identity{
		GameID:   gameID,
		PlayerID: playerID,
		DMDataID: dmDataID,
	})
}

// localCommand is the PersistentPreRunE for commands that never talk to the
// API server.
func localCommand(cmd *cobra.Command, args []string) error {
	setupColor()
	return nil
}

func setupColor() {
	if noColor || !ui.ShouldUseColor(os.Stdout) {
		ui.ForceNoColor()
	}
}

func init() {
	remote := activeRemote()
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "API server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", envOr("DM_AUTH_TOKEN", remote.Token), "bearer token for the API server")
	rootCmd.PersistentFlags().StringVar(&gameID, "game", envOr("DM_GAME_ID", remote.GameID), "game id")
	rootCmd.PersistentFlags().StringVar(&playerID, "player", envOr("DM_PLAYER_ID", remote.PlayerID), "player id")
	rootCmd.PersistentFlags().StringVar(&dmDataID, "as", "", "monster or player id to act on (dungeon master only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "play", Title: "Play:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Play
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(navCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(referenceCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError("Error: "+err.Error()))
		os.Exit(1)
	}
}
