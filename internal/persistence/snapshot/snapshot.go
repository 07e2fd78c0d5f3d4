package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is a complete, resumable world state. Tick is the number of
// completed ticks; a world imported from it continues with that tick.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed   int64 `json:"seed"`
	Width  int   `json:"width"`
	Height int   `json:"height"`

	Behavior     string  `json:"behavior"`
	PLeaveTrail  float64 `json:"p_leave_trail"`
	PFollowTrail float64 `json:"p_follow_trail"`

	// Generation parameters (informational once resources exist).
	ResourceDensity float64 `json:"resource_density"`
	QuantityMean    float64 `json:"quantity_mean"`
	QuantityStdev   float64 `json:"quantity_stdev"`
	PatchClusters   int     `json:"patch_clusters,omitempty"`

	// Operational parameters (captured for deterministic replay/resume).
	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`
	StatsBucketTicks   int `json:"stats_bucket_ticks,omitempty"`
	StatsWindowTicks   int `json:"stats_window_ticks,omitempty"`

	RNGState []byte `json:"rng_state"`

	StoredFood  int `json:"stored_food"`
	SeededUnits int `json:"seeded_units"`

	Bots      []BotV1  `json:"bots"`
	Resources []CellV1 `json:"resources"`
	Trails    []CellV1 `json:"trails"`
}

type BotV1 struct {
	Pos          [2]int `json:"pos"`
	CarryingFood bool   `json:"carrying_food,omitempty"`
	LeaveMark    bool   `json:"leave_mark,omitempty"`
	TrackingOn   bool   `json:"tracking_on,omitempty"`
}

// CellV1 is one resource (Value = units) or trail (Value = strength) cell.
type CellV1 struct {
	Pos   [2]int `json:"pos"`
	Value int    `json:"value"`
}

// UnitsOnField sums resource quantities.
func (s SnapshotV1) UnitsOnField() int {
	n := 0
	for _, c := range s.Resources {
		n += c.Value
	}
	return n
}

func (s SnapshotV1) Carrying() int {
	n := 0
	for _, b := range s.Bots {
		if b.CarryingFood {
			n++
		}
	}
	return n
}

// WriteSnapshot writes a JSON header line followed by the gob-encoded
// snapshot, all inside one zstd frame.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is for quick inspection; gob also contains it.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
