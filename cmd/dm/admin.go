package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/dungeonmaster/internal/config"
	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/idgen"
	"github.com/alfredjeanlab/dungeonmaster/internal/store"
	dmsync "github.com/alfredjeanlab/dungeonmaster/internal/sync"
)

// openAdminStore opens the datastore configured by the DM_* environment.
// Tests replace it.
var openAdminStore = func(ctx context.Context) (store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openStore(ctx, cfg)
}

// adminStore is the datastore for the running admin command.
var adminStore store.Store

var adminCmd = &cobra.Command{
	Use:     "admin",
	Short:   "Operate directly on the datastore",
	GroupID: "system",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupColor()
		s, err := openAdminStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("opening datastore: %w", err)
		}
		adminStore = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if adminStore != nil {
			adminStore.Close()
		}
	},
}

var adminCreateGameCmd = &cobra.Command{
	Use:   "create-game",
	Short: "Create a game and its dungeon master",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		desc, _ := cmd.Flags().GetString("description")
		dmName, _ := cmd.Flags().GetString("dm-name")
		dmID, _ := cmd.Flags().GetString("dm-id")

		ctx := cmd.Context()
		gid, err := idgen.Game()
		if err != nil {
			return err
		}
		if dmID == "" {
			if dmID, err = idgen.Player(); err != nil {
				return err
			}
		}

		if err := putEntity(ctx, entity.Player, dmID, map[string]any{
			"name":           dmName,
			"dungeon_master": true,
		}); err != nil {
			return err
		}
		if err := putEntity(ctx, entity.Game, gid, map[string]any{
			"name":        name,
			"description": desc,
			"players":     []any{dmID},
		}); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"game_id": gid, "player_id": dmID})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created game %s with dungeon master %s\n", gid, dmID)
		return nil
	},
}

var adminAddPlayerCmd = &cobra.Command{
	Use:   "add-player <game-id>",
	Short: "Create a player and add them to a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gid := args[0]
		name, _ := cmd.Flags().GetString("name")
		pid, _ := cmd.Flags().GetString("id")
		dm, _ := cmd.Flags().GetBool("dm")

		ctx := cmd.Context()
		game, err := entity.Game.Open(adminStore, gid)
		if err != nil {
			return err
		}
		rec, found, err := game.Lookup(ctx)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("game %q not found", gid)
		}

		if pid == "" {
			if pid, err = idgen.Player(); err != nil {
				return err
			}
		}
		if err := ensurePlayer(ctx, pid, name, cmd.Flags().Changed("name"), dm); err != nil {
			return err
		}

		players, _ := rec.Data["players"].([]any)
		if !slices.Contains(players, any(pid)) {
			rec.Data["players"] = append(players, pid)
			if _, err := game.Upsert(ctx, rec.Data); err != nil {
				return fmt.Errorf("updating game %s: %w", gid, err)
			}
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"game_id": gid, "player_id": pid})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added player %s to game %s\n", pid, gid)
		return nil
	},
}

var adminGetCmd = &cobra.Command{
	Use:   "get <kind> <id>",
	Short: "Print a stored record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openKind(args[0], args[1])
		if err != nil {
			return err
		}
		rec, found, err := e.Lookup(cmd.Context())
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s %q not found", args[0], args[1])
		}
		return printJSON(cmd.OutOrStdout(), rec)
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <kind> <id>",
	Short: "Delete a stored record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openKind(args[0], args[1])
		if err != nil {
			return err
		}
		if err := e.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", e.Namespace().Key())
		return nil
	},
}

var adminExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every record as JSONL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		if out == "" || out == "-" {
			return dmsync.ExportJSONL(cmd.Context(), adminStore, cmd.OutOrStdout())
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := dmsync.ExportJSONL(cmd.Context(), adminStore, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var adminImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore records from a JSONL export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := dmsync.ImportJSONL(cmd.Context(), adminStore, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
		return nil
	},
}

func putEntity(ctx context.Context, k entity.Kind, id string, data map[string]any) error {
	e, err := k.Open(adminStore, id)
	if err != nil {
		return err
	}
	if _, err := e.Upsert(ctx, data); err != nil {
		return fmt.Errorf("writing %s %s: %w", k, id, err)
	}
	return nil
}

// ensurePlayer creates player id, or updates an existing one in place. Player
// records are shared by every game, so an existing record keeps its fields
// unless a flag explicitly sets them.
func ensurePlayer(ctx context.Context, id, name string, setName, dm bool) error {
	e, err := entity.Player.Open(adminStore, id)
	if err != nil {
		return err
	}
	rec, found, err := e.Lookup(ctx)
	if err != nil {
		return err
	}
	if !found {
		data := map[string]any{"name": name}
		if dm {
			data["dungeon_master"] = true
		}
		return putEntity(ctx, entity.Player, id, data)
	}

	changed := false
	if setName && rec.Data["name"] != name {
		rec.Data["name"] = name
		changed = true
	}
	if dm && rec.Data["dungeon_master"] != true {
		rec.Data["dungeon_master"] = true
		changed = true
	}
	if !changed {
		return nil
	}
	if _, err := e.Upsert(ctx, rec.Data); err != nil {
		return fmt.Errorf("writing player %s: %w", id, err)
	}
	return nil
}

func openKind(name, id string) (*entity.Entity, error) {
	k, ok := entity.KindByName(name)
	if !ok {
		names := make([]string, 0, len(entity.Kinds()))
		for _, k := range entity.Kinds() {
			names = append(names, k.Name)
		}
		return nil, fmt.Errorf("unknown kind %q (one of %s)", name, strings.Join(names, ", "))
	}
	return k.Open(adminStore, id)
}

func init() {
	adminCreateGameCmd.Flags().String("name", "", "game name")
	adminCreateGameCmd.Flags().String("description", "", "game description")
	adminCreateGameCmd.Flags().String("dm-name", "Dungeon Master", "dungeon master's display name")
	adminCreateGameCmd.Flags().String("dm-id", "", "existing player id for the dungeon master (minted when empty)")

	adminAddPlayerCmd.Flags().String("name", "", "player display name")
	adminAddPlayerCmd.Flags().String("id", "", "player id (minted when empty)")
	adminAddPlayerCmd.Flags().Bool("dm", false, "make the player a dungeon master")

	adminExportCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")

	adminCmd.AddCommand(adminCreateGameCmd)
	adminCmd.AddCommand(adminAddPlayerCmd)
	adminCmd.AddCommand(adminGetCmd)
	adminCmd.AddCommand(adminDeleteCmd)
	adminCmd.AddCommand(adminExportCmd)
	adminCmd.AddCommand(adminImportCmd)
}
