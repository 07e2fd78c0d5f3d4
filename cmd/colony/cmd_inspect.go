package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"colony.ai/internal/persistence/indexdb"
	"colony.ai/internal/persistence/snapshot"
)

type inspectOutput struct {
	Version      int     `json:"version"`
	WorldID      string  `json:"world_id"`
	Tick         uint64  `json:"tick"`
	Seed         int64   `json:"seed"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Behavior     string  `json:"behavior"`
	PLeaveTrail  float64 `json:"p_leave_trail"`
	PFollowTrail float64 `json:"p_follow_trail"`
	Bots         int     `json:"bots"`
	Carrying     int     `json:"carrying"`
	Resources    int     `json:"resource_cells"`
	Units        int     `json:"resource_units"`
	Trails       int     `json:"trail_cells"`
	StoredFood   int     `json:"stored_food"`
	SeededUnits  int     `json:"seeded_units"`
	IndexedTicks *int    `json:"indexed_ticks,omitempty"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Summarize a snapshot",
		Long: `Inspect prints what a snapshot holds. With --index it also reports how
many ticks the run index has recorded.

Examples:
  colony inspect data/colony_1/snapshots/1000.snap.zst
  colony inspect --json --index data/colony_1/index/colony.sqlite data/colony_1/snapshots/1000.snap.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			indexPath, _ := cmd.Flags().GetString("index")

			snap, err := snapshot.ReadSnapshot(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			o := inspectOutput{
				Version:      snap.Header.Version,
				WorldID:      snap.Header.WorldID,
				Tick:         snap.Header.Tick,
				Seed:         snap.Seed,
				Width:        snap.Width,
				Height:       snap.Height,
				Behavior:     snap.Behavior,
				PLeaveTrail:  snap.PLeaveTrail,
				PFollowTrail: snap.PFollowTrail,
				Bots:         len(snap.Bots),
				Carrying:     snap.Carrying(),
				Resources:    len(snap.Resources),
				Units:        snap.UnitsOnField(),
				Trails:       len(snap.Trails),
				StoredFood:   snap.StoredFood,
				SeededUnits:  snap.SeededUnits,
			}
			if indexPath != "" {
				n, err := indexedTicks(cmd.Context(), indexPath)
				if err != nil {
					return err
				}
				o.IndexedTicks = &n
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(o)
			}
			fmt.Fprintf(out, "Snapshot v%d: %s tick %d\n", o.Version, o.WorldID, o.Tick)
			fmt.Fprintf(out, "  Seed:       %d\n", o.Seed)
			fmt.Fprintf(out, "  Field:      %dx%d\n", o.Width, o.Height)
			fmt.Fprintf(out, "  Behavior:   %s (p_leave=%.2f p_follow=%.2f)\n", o.Behavior, o.PLeaveTrail, o.PFollowTrail)
			fmt.Fprintf(out, "  Bots:       %d (%d carrying)\n", o.Bots, o.Carrying)
			fmt.Fprintf(out, "  Resources:  %d cells, %d units\n", o.Resources, o.Units)
			fmt.Fprintf(out, "  Trails:     %d cells\n", o.Trails)
			fmt.Fprintf(out, "  Stored:     %d of %d seeded\n", o.StoredFood, o.SeededUnits)
			if o.IndexedTicks != nil {
				fmt.Fprintf(out, "  Indexed:    %d ticks\n", *o.IndexedTicks)
			}
			return nil
		},
	}
	cmd.Flags().String("index", "", "path to the run's SQLite index (optional)")
	return cmd
}

func indexedTicks(ctx context.Context, path string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := indexdb.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("open index: %w", err)
	}
	defer r.Close()
	n, err := r.TickCount(ctx)
	if err != nil && !errors.Is(err, indexdb.ErrNotFound) {
		return 0, fmt.Errorf("count ticks: %w", err)
	}
	return n, nil
}
