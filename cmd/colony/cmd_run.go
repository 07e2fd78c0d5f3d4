package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"colony.ai/internal/persistence/indexdb"
	persistlog "colony.ai/internal/persistence/log"
	"colony.ai/internal/persistence/snapshot"
	"colony.ai/internal/sim/tuning"
	"colony.ai/internal/sim/world"
)

type runSummary struct {
	WorldID     string `json:"world_id"`
	Seed        int64  `json:"seed"`
	Tick        uint64 `json:"tick"`
	StoredFood  int    `json:"stored_food"`
	SeededUnits int    `json:"seeded_units"`
	Carrying    int    `json:"carrying"`
	TrailCells  int    `json:"trail_cells"`
	Digest      string `json:"digest"`
	RunDir      string `json:"run_dir,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a colony for a number of ticks",
		Long: `Run builds a world from a tuning file (or the defaults), steps it and
prints the stored food.

With --data the run writes snapshots, a per-tick log and a SQLite index
under <data>/<world_id>. --resume continues from the newest snapshot there.

Examples:
  colony run --seed 7 --steps 5000
  colony run --tuning tuning.yaml --data ./data --steps 20000
  colony run --data ./data --resume --steps 10000`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
	cmd.Flags().String("tuning", "", "path to tuning.yaml (defaults when empty)")
	cmd.Flags().Int64("seed", 1, "world seed")
	cmd.Flags().Int("steps", 1000, "ticks to run")
	cmd.Flags().String("data", "", "data directory for snapshots, tick log and index (optional)")
	cmd.Flags().Bool("resume", false, "resume from the latest snapshot in the run directory")
	cmd.Flags().Int("snapshot-every", -1, "override snapshot_every_ticks (0 disables)")
	cmd.Flags().Int("ticks-per-file", persistlog.DefaultTicksPerFile, "ticks per tick log segment")
	cmd.Flags().Bool("no-index", false, "disable the SQLite index")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	tuningPath, _ := cmd.Flags().GetString("tuning")
	seed, _ := cmd.Flags().GetInt64("seed")
	steps, _ := cmd.Flags().GetInt("steps")
	dataDir, _ := cmd.Flags().GetString("data")
	resume, _ := cmd.Flags().GetBool("resume")
	snapEvery, _ := cmd.Flags().GetInt("snapshot-every")
	ticksPerFile, _ := cmd.Flags().GetInt("ticks-per-file")
	noIndex, _ := cmd.Flags().GetBool("no-index")

	if steps < 0 {
		return fmt.Errorf("--steps must be >= 0")
	}
	if resume && dataDir == "" {
		return fmt.Errorf("--resume needs --data")
	}

	tune := tuning.Defaults()
	if tuningPath != "" {
		if tune, err = tuning.Load(tuningPath); err != nil {
			return fmt.Errorf("load tuning: %w", err)
		}
	}
	cfg := tune.ToWorldConfig(seed)
	if snapEvery >= 0 {
		cfg.SnapshotEveryTicks = snapEvery
	}

	var runDir string
	if dataDir != "" {
		runDir = filepath.Join(dataDir, cfg.ID)
	}

	var w *world.World
	if resume {
		path := latestSnapshot(runDir)
		if path == "" {
			return fmt.Errorf("no snapshot to resume in %s", filepath.Join(runDir, "snapshots"))
		}
		snap, err := snapshot.ReadSnapshot(path)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		if snap.Header.WorldID != cfg.ID {
			return fmt.Errorf("snapshot world id mismatch: tuning=%s snap=%s", cfg.ID, snap.Header.WorldID)
		}
		if w, err = world.FromSnapshot(snap); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
		logger.Info("resumed", "snapshot", filepath.Base(path), "tick", w.CurrentTick())
	} else {
		if w, err = world.New(cfg); err != nil {
			return err
		}
	}
	w.SetLogger(logger)

	var snapWG sync.WaitGroup
	var snapCh chan snapshot.SnapshotV1
	if runDir != "" {
		var idx *indexdb.SQLiteIndex
		if !noIndex {
			idx, err = indexdb.OpenSQLite(filepath.Join(runDir, "index", "colony.sqlite"))
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer idx.Close()
			if err := idx.RecordRun(w.Config()); err != nil {
				logger.Warn("index run meta", "err", err)
			}
		}

		tickLog := persistlog.NewTickLogger(runDir, ticksPerFile)
		defer tickLog.Close()
		if idx != nil {
			w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
		} else {
			w.SetTickLogger(tickLog)
		}

		snapCh = make(chan snapshot.SnapshotV1, 2)
		w.SetSnapshotSink(snapCh)
		snapWG.Add(1)
		go func() {
			defer snapWG.Done()
			for snap := range snapCh {
				path := snapshotPath(runDir, snap.Header.Tick)
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Error("snapshot write", "err", err)
					continue
				}
				logger.Debug("snapshot written", "tick", snap.Header.Tick)
				idx.RecordSnapshot(path, snap)
			}
		}()
	}

	start := w.CurrentTick()
	logger.Info("running", "world", w.ID(), "seed", w.Config().Seed, "from_tick", start, "steps", steps)
	w.StepN(steps)

	if snapCh != nil {
		// Periodic snapshots are best effort; the final one is not.
		w.SetSnapshotSink(nil)
		snapCh <- w.ExportSnapshot()
		close(snapCh)
		snapWG.Wait()
	}

	st := w.LastStats()
	sum := runSummary{
		WorldID:     w.ID(),
		Seed:        w.Config().Seed,
		Tick:        w.CurrentTick(),
		StoredFood:  w.StoredFood(),
		SeededUnits: w.SeededUnits(),
		Carrying:    st.Carrying,
		TrailCells:  st.TrailCells,
		Digest:      w.Digest(),
		RunDir:      runDir,
	}
	logger.Info("done", "tick", sum.Tick, "stored_food", sum.StoredFood, "seeded_units", sum.SeededUnits)

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(sum)
	}
	fmt.Fprintf(out, "stored_food=%d tick=%d seeded_units=%d carrying=%d trail_cells=%d\n",
		sum.StoredFood, sum.Tick, sum.SeededUnits, sum.Carrying, sum.TrailCells)
	return nil
}

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(e world.TickLogEntry) error {
	if m.a != nil {
		if err := m.a.WriteTick(e); err != nil {
			return err
		}
	}
	if m.b != nil {
		return m.b.WriteTick(e)
	}
	return nil
}

func snapshotPath(runDir string, tick uint64) string {
	return filepath.Join(runDir, "snapshots", fmt.Sprintf("%d.snap.zst", tick))
}

func latestSnapshot(runDir string) string {
	dir := filepath.Join(runDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
