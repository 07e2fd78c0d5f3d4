package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"colony.ai/internal/sim/world"
)

// DefaultTicksPerFile is how many ticks go into one events file.
const DefaultTicksPerFile = 10000

// JSONLZstdWriter appends JSON lines to zstd-compressed segment files.
// Segments are named by the first key they hold, so a lexical sort of the
// directory is also the write order.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curSeg uint64
	open   bool
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Write appends v to the segment identified by seg, rotating when seg changes.
func (w *JSONLZstdWriter) Write(seg uint64, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open || seg != w.curSeg {
		if err := w.rotateLocked(seg); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines into the compressor.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(seg uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.PathFor(seg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curSeg = seg
	w.open = true
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	w.w = nil
	w.open = false
	return err1
}

func (w *JSONLZstdWriter) PathFor(seg uint64) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%012d.jsonl.zst", w.prefix, seg))
}

// TickLogger writes one JSONL entry per tick (compressed), ticksPerFile
// entries per segment.
type TickLogger struct {
	w            *JSONLZstdWriter
	ticksPerFile uint64
}

func NewTickLogger(runDir string, ticksPerFile int) *TickLogger {
	if ticksPerFile <= 0 {
		ticksPerFile = DefaultTicksPerFile
	}
	return &TickLogger{
		w:            NewJSONLZstdWriter(EventsDir(runDir), "events"),
		ticksPerFile: uint64(ticksPerFile),
	}
}

// EventsDir is where a run's tick log segments live.
func EventsDir(runDir string) string { return filepath.Join(runDir, "events") }

func (l *TickLogger) WriteTick(v world.TickLogEntry) error {
	seg := v.Tick - v.Tick%l.ticksPerFile
	return l.w.Write(seg, v)
}

func (l *TickLogger) Close() error { return l.w.Close() }
