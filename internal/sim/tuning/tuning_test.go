package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeTuning(t, "width: 40\nheight: 30\nbots: 5\nbehavior: plain\npatch_clusters: 3\n")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Defaults()
	want.Width, want.Height, want.Bots = 40, 30, 5
	want.Behavior = "plain"
	want.PatchClusters = 3
	if got != want {
		t.Fatalf("tuning=%+v want %+v", got, want)
	}
}

func TestLoad_EmptyFileIsDefaults(t *testing.T) {
	got, err := Load(writeTuning(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("tuning=%+v want defaults", got)
	}
}

func TestLoad_SchemaRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown key", "widht: 10\n"},
		{"zero width", "width: 0\n"},
		{"probability above one", "p_leave_trail: 1.5\n"},
		{"unknown behavior", "behavior: swarm\n"},
		{"negative stdev", "quantity_stdev: -1\n"},
		{"fractional bots", "bots: 2.5\n"},
		{"not a mapping", "- 1\n- 2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeTuning(t, tc.body)); err == nil {
				t.Fatalf("expected error for %q", tc.body)
			}
		})
	}
}

func TestDefaults_RoundTripThroughYAML(t *testing.T) {
	b, err := Defaults().YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if err := Validate(b); err != nil {
		t.Fatalf("defaults do not validate: %v\n%s", err, b)
	}
	if !strings.Contains(string(b), "p_follow_trail: 0.5") {
		t.Fatalf("unexpected rendering:\n%s", b)
	}
}

func TestToWorldConfig(t *testing.T) {
	cfg := Defaults().ToWorldConfig(99)
	if cfg.Seed != 99 || cfg.Width != 100 || cfg.BotCount != 10 || cfg.Behavior != "trail" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.PLeaveTrail != 0.5 || cfg.QuantityMean != 10 || cfg.SnapshotEveryTicks != 1000 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestCheck_SpawnCapacity(t *testing.T) {
	tu := Defaults()
	tu.Width, tu.Height = 5, 5
	tu.Bots = 50
	if err := tu.Check(); err == nil {
		t.Fatal("expected spawn capacity error")
	}
	if err := Defaults().Check(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
}
