package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"colony.ai/internal/sim/world"
)

//go:embed schema.json
var schemaJSON string

type Tuning struct {
	WorldID string `yaml:"world_id"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Bots         int     `yaml:"bots"`
	Behavior     string  `yaml:"behavior"`
	PLeaveTrail  float64 `yaml:"p_leave_trail"`
	PFollowTrail float64 `yaml:"p_follow_trail"`

	ResourceDensity float64 `yaml:"resource_density"`
	QuantityMean    float64 `yaml:"quantity_mean"`
	QuantityStdev   float64 `yaml:"quantity_stdev"`
	PatchClusters   int     `yaml:"patch_clusters"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
	StatsBucketTicks   int `yaml:"stats_bucket_ticks"`
	StatsWindowTicks   int `yaml:"stats_window_ticks"`
}

// Defaults is the tuning used when no file is given. Keys missing from a
// loaded file keep these values.
func Defaults() Tuning {
	return Tuning{
		WorldID:            "colony_1",
		Width:              100,
		Height:             100,
		Bots:               10,
		Behavior:           world.BehaviorNameTrailAware,
		PLeaveTrail:        0.5,
		PFollowTrail:       0.5,
		ResourceDensity:    0.01,
		QuantityMean:       10,
		QuantityStdev:      3,
		SnapshotEveryTicks: 1000,
		StatsBucketTicks:   100,
		StatsWindowTicks:   1000,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := Validate(raw); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks a raw YAML tuning document against the embedded schema.
func Validate(raw []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		// Empty document: everything defaults.
		return nil
	}
	// The validator wants JSON-decoded values.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("tuning must be a string-keyed mapping: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("tuning.schema.json", schemaJSON)
}

// ToWorldConfig maps the tuning onto a world configuration for one seed.
func (t Tuning) ToWorldConfig(seed int64) world.WorldConfig {
	return world.WorldConfig{
		ID:                 t.WorldID,
		Seed:               seed,
		Width:              t.Width,
		Height:             t.Height,
		BotCount:           t.Bots,
		Behavior:           t.Behavior,
		PLeaveTrail:        t.PLeaveTrail,
		PFollowTrail:       t.PFollowTrail,
		ResourceDensity:    t.ResourceDensity,
		QuantityMean:       t.QuantityMean,
		QuantityStdev:      t.QuantityStdev,
		PatchClusters:      t.PatchClusters,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
		StatsBucketTicks:   t.StatsBucketTicks,
		StatsWindowTicks:   t.StatsWindowTicks,
	}
}

// Check applies the world's own configuration rules, which the schema
// cannot express (spawn capacity, for one).
func (t Tuning) Check() error {
	return t.ToWorldConfig(0).Validate()
}

// YAML renders the tuning as a document Load accepts.
func (t Tuning) YAML() ([]byte, error) { return yaml.Marshal(t) }
