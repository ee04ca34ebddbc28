package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/client"
	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// summarize renders a value on one line: scalars as-is, containers as compact
// JSON cut to width.
func summarize(v any, width int) string {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case nil:
		s = "-"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(data)
		}
	}
	if len(s) > width {
		s = s[:width-3] + "..."
	}
	return s
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(timeLayout)
}

func printRecord(w io.Writer, title string, rec entity.Record) {
	fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(title), ui.RenderMuted("(updated "+formatStamp(rec.LastUpdated)+")"))
	if len(rec.Data) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("  (empty)"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range sortedKeys(rec.Data) {
		fmt.Fprintf(tw, "  %s\t%s\n", k, summarize(rec.Data[k], 60))
	}
	tw.Flush()
}

func printMenu(w io.Writer, menu ui.Menu) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, l := range menu.Navigation {
		fmt.Fprintf(tw, "%s\t%s\n", l.Name, ui.RenderMuted(l.Path))
	}
	tw.Flush()
}

func printLoadGame(w io.Writer, lg *client.LoadGame) {
	name, _ := lg.Game.Data["name"].(string)
	if name == "" {
		name = "(unnamed game)"
	}
	role := "player"
	if lg.IsDM {
		role = ui.RenderDM("dungeon master")
	}
	fmt.Fprintf(w, "%s  %s\n", ui.RenderAccent(name), role)
	if desc, _ := lg.Game.Data["description"].(string); desc != "" {
		fmt.Fprintln(w, desc)
	}
	fmt.Fprintln(w)
	printRecord(w, "Locations", lg.Locations)
	printRecord(w, "Players", lg.Players)
	printRecord(w, "Events", lg.Events)
}

func printWriteResult(w io.Writer, section string, res *client.WriteResult) {
	fmt.Fprintf(w, "%s saved %s\n", section, ui.RenderMuted("at "+formatStamp(res.LastUpdated)))
}
