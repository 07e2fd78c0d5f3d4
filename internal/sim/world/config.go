package world

import "strings"

// Behavior kinds accepted in WorldConfig.Behavior.
const (
	BehaviorNamePlain      = "plain"
	BehaviorNameTrailAware = "trail"
)

type WorldConfig struct {
	ID     string
	Seed   int64
	Width  int
	Height int

	// Bots.
	BotCount     int
	Behavior     string
	PLeaveTrail  float64
	PFollowTrail float64

	// Resource generation.
	ResourceDensity float64
	QuantityMean    float64
	QuantityStdev   float64
	// PatchClusters > 0 runs the one-time declustering pass after seeding.
	PatchClusters int

	// Scripted layout. When non-nil these replace the random spawn/seeding
	// (used by scenario tests and by tooling that needs a fixed start).
	InitialBots      []Pos
	InitialResources map[Pos]int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks int
	StatsBucketTicks   int
	StatsWindowTicks   int
}

func (c *WorldConfig) applyDefaults() {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = "colony_1"
	}
	if strings.TrimSpace(c.Behavior) == "" {
		c.Behavior = BehaviorNameTrailAware
	}
	c.Behavior = strings.ToLower(strings.TrimSpace(c.Behavior))
	if c.StatsBucketTicks <= 0 {
		c.StatsBucketTicks = 100
	}
	if c.StatsWindowTicks <= 0 {
		c.StatsWindowTicks = 1000
	}
}

func (c WorldConfig) validate() error {
	if c.Width <= 0 {
		return configErrorf("width", "must be > 0, got %d", c.Width)
	}
	if c.Height <= 0 {
		return configErrorf("height", "must be > 0, got %d", c.Height)
	}
	if c.InitialBots == nil && c.BotCount < 0 {
		return configErrorf("bot_count", "must be >= 0, got %d", c.BotCount)
	}
	if !inUnit(c.ResourceDensity) {
		return configErrorf("resource_density", "must be in [0,1], got %v", c.ResourceDensity)
	}
	if c.QuantityStdev < 0 {
		return configErrorf("quantity_stdev", "must be >= 0, got %v", c.QuantityStdev)
	}
	if c.PatchClusters < 0 {
		return configErrorf("patch_clusters", "must be >= 0, got %d", c.PatchClusters)
	}
	if c.SnapshotEveryTicks < 0 {
		return configErrorf("snapshot_every_ticks", "must be >= 0, got %d", c.SnapshotEveryTicks)
	}
	switch c.Behavior {
	case BehaviorNamePlain:
	case BehaviorNameTrailAware:
		if !inUnit(c.PLeaveTrail) {
			return configErrorf("p_leave_trail", "must be in [0,1], got %v", c.PLeaveTrail)
		}
		if !inUnit(c.PFollowTrail) {
			return configErrorf("p_follow_trail", "must be in [0,1], got %v", c.PFollowTrail)
		}
	default:
		return configErrorf("behavior", "unknown behavior %q", c.Behavior)
	}

	f := Field{Width: c.Width, Height: c.Height}
	for i, p := range c.InitialBots {
		if !f.Contains(p) {
			return configErrorf("initial_bots", "bot %d at %v is outside the field", i, p)
		}
	}
	for p, q := range c.InitialResources {
		if !f.Contains(p) {
			return configErrorf("initial_resources", "cell %v is outside the field", p)
		}
		if p == f.Storage() {
			return configErrorf("initial_resources", "storage cell %v cannot hold a resource", p)
		}
		if q <= 0 {
			return configErrorf("initial_resources", "cell %v has non-positive quantity %d", p, q)
		}
	}
	if c.InitialBots == nil && c.BotCount > f.spawnArea() {
		return configErrorf("bot_count", "%d bots do not fit the %d spawn cells", c.BotCount, f.spawnArea())
	}
	return nil
}

// Validate reports the first problem with c as a *ConfigError, after the
// same defaults New applies.
func (c WorldConfig) Validate() error {
	c.applyDefaults()
	return c.validate()
}

// behavior resolves the configured behavior name into the bot variant.
func (c WorldConfig) behavior() Behavior {
	if c.Behavior == BehaviorNamePlain {
		return Plain()
	}
	return TrailAware(c.PLeaveTrail, c.PFollowTrail)
}

// inUnit also rejects NaN.
func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
