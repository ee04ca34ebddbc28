package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/dungeonmaster/internal/client"
)

var loadCmd = &cobra.Command{
	Use:     "load",
	Short:   "Show the game with its current locations, players and events",
	GroupID: "play",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lg, err := gameClient.LoadGame(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading game: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), lg)
		}
		printLoadGame(cmd.OutOrStdout(), lg)
		return nil
	},
}

var gameCmd = &cobra.Command{
	Use:     "game",
	Short:   "Show the game record",
	GroupID: "play",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := gameClient.Game(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting game: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		printRecord(cmd.OutOrStdout(), "Game", *rec)
		return nil
	},
}

var navCmd = &cobra.Command{
	Use:     "nav",
	Short:   "Show the navigation menu for the current player",
	GroupID: "play",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		menu, err := gameClient.Navigation(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting navigation: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), menu)
		}
		printMenu(cmd.OutOrStdout(), *menu)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:       "get <section>",
	Short:     "Show a game section (dungeon master only except player)",
	GroupID:   "play",
	Args:      cobra.ExactArgs(1),
	ValidArgs: client.Sections,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, args[0])
	},
}

var putCmd = &cobra.Command{
	Use:       "put <section>",
	Short:     "Replace a game section with a JSON object",
	GroupID:   "play",
	Args:      cobra.ExactArgs(1),
	ValidArgs: client.Sections,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return runPut(cmd, args[0], file)
	},
}

var playerCmd = &cobra.Command{
	Use:     "player",
	Short:   "Show or replace your player record",
	GroupID: "play",
}

var playerGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your player record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd, "player")
	},
}

var playerPutCmd = &cobra.Command{
	Use:   "put",
	Short: "Replace your player record with a JSON object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return runPut(cmd, "player", file)
	},
}

var referenceCmd = &cobra.Command{
	Use:     "reference [<database> [<table> [<resource>]]]",
	Short:   "Look up the rules reference",
	GroupID: "play",
	Args:    cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts := make([]string, 3)
		copy(parts, args)
		data, err := gameClient.Reference(cmd.Context(), parts[0], parts[1], parts[2])
		if err != nil {
			return fmt.Errorf("looking up reference: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), data)
	},
}

func runGet(cmd *cobra.Command, section string) error {
	rec, err := gameClient.Get(cmd.Context(), section)
	if err != nil {
		return fmt.Errorf("getting %s: %w", section, err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rec)
	}
	printRecord(cmd.OutOrStdout(), strings.ToUpper(section[:1])+section[1:], *rec)
	return nil
}

func runPut(cmd *cobra.Command, section, file string) error {
	data, err := readObject(cmd.InOrStdin(), file)
	if err != nil {
		return err
	}
	res, err := gameClient.Put(cmd.Context(), section, data)
	if err != nil {
		return fmt.Errorf("saving %s: %w", section, err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printWriteResult(cmd.OutOrStdout(), section, res)
	return nil
}

// readObject reads a JSON object from file, or from stdin when file is "-".
func readObject(stdin io.Reader, file string) (map[string]any, error) {
	var raw []byte
	var err error
	if file == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	if data == nil {
		return nil, fmt.Errorf("parsing %s: expected a JSON object", file)
	}
	return data, nil
}

func init() {
	putCmd.Flags().StringP("file", "f", "-", "JSON file to upload (- for stdin)")
	playerPutCmd.Flags().StringP("file", "f", "-", "JSON file to upload (- for stdin)")

	playerCmd.AddCommand(playerGetCmd)
	playerCmd.AddCommand(playerPutCmd)
}
