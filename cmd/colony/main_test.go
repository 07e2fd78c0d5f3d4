package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeSmallTuning(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "width: 30\nheight: 30\nbots: 6\nresource_density: 0.05\nquantity_mean: 4\nquantity_stdev: 1\nsnapshot_every_ticks: 50\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	return path
}

func TestRun_IsDeterministicPerSeed(t *testing.T) {
	tp := writeSmallTuning(t)
	var sums [2]runSummary
	for i := range sums {
		out, err := execute(t, "run", "--json", "--tuning", tp, "--seed", "11", "--steps", "300")
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if err := json.Unmarshal([]byte(out), &sums[i]); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
	}
	if sums[0] != sums[1] {
		t.Fatalf("runs diverged:\n%+v\n%+v", sums[0], sums[1])
	}
	if sums[0].Tick != 300 {
		t.Fatalf("tick=%d", sums[0].Tick)
	}
}

func TestRunReplayInspect(t *testing.T) {
	tp := writeSmallTuning(t)
	data := t.TempDir()

	if _, err := execute(t, "run", "--tuning", tp, "--seed", "3", "--steps", "120", "--data", data, "--ticks-per-file", "40"); err != nil {
		t.Fatalf("run: %v", err)
	}
	runDir := filepath.Join(data, "colony_1")
	for _, tick := range []string{"50", "100", "120"} {
		if _, err := os.Stat(filepath.Join(runDir, "snapshots", tick+".snap.zst")); err != nil {
			t.Fatalf("snapshot %s: %v", tick, err)
		}
	}

	out, err := execute(t, "replay",
		"--snapshot", filepath.Join(runDir, "snapshots", "50.snap.zst"),
		"--events", filepath.Join(runDir, "events"))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "replay ok: checked=70 ") {
		t.Fatalf("replay output: %q", out)
	}

	out, err = execute(t, "inspect", "--json",
		"--index", filepath.Join(runDir, "index", "colony.sqlite"),
		filepath.Join(runDir, "snapshots", "120.snap.zst"))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var o inspectOutput
	if err := json.Unmarshal([]byte(out), &o); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if o.Tick != 120 || o.Bots != 6 || o.Seed != 3 {
		t.Fatalf("inspect=%+v", o)
	}
	if o.IndexedTicks == nil || *o.IndexedTicks != 120 {
		t.Fatalf("indexed ticks=%v", o.IndexedTicks)
	}
	if o.Units+o.Carrying+o.StoredFood > o.SeededUnits {
		t.Fatalf("more food accounted than seeded: %+v", o)
	}
}

func TestRun_ResumeContinuesTheSameRun(t *testing.T) {
	tp := writeSmallTuning(t)

	straight, err := execute(t, "run", "--json", "--tuning", tp, "--seed", "5", "--steps", "200")
	if err != nil {
		t.Fatalf("straight run: %v", err)
	}

	data := t.TempDir()
	if _, err := execute(t, "run", "--tuning", tp, "--seed", "5", "--steps", "80", "--data", data, "--no-index"); err != nil {
		t.Fatalf("first leg: %v", err)
	}
	resumed, err := execute(t, "run", "--json", "--tuning", tp, "--seed", "5", "--steps", "120", "--data", data, "--resume", "--no-index")
	if err != nil {
		t.Fatalf("second leg: %v", err)
	}

	var a, b runSummary
	if err := json.Unmarshal([]byte(straight), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(resumed), &b); err != nil {
		t.Fatal(err)
	}
	b.RunDir = ""
	if a != b {
		t.Fatalf("resumed run diverged:\n%+v\n%+v", a, b)
	}
}

func TestTuningCommands(t *testing.T) {
	out, err := execute(t, "tuning", "defaults")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	if out, err := execute(t, "tuning", "validate", path); err != nil || !strings.HasPrefix(out, "OK:") {
		t.Fatalf("validate defaults: out=%q err=%v", out, err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("width: 4\nheight: 4\nbots: 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "tuning", "validate", bad); err == nil {
		t.Fatal("expected spawn capacity error")
	}
}
