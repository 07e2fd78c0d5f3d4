package world

import (
	"fmt"

	"colony.ai/internal/sim/world/logic/mathx"
)

// Pos is a grid cell. X is the row in [0, Width), Y the column in [0, Height).
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Field is the fixed geometry of a run.
type Field struct {
	Width  int
	Height int
}

// Storage is the central cell where carried food is dropped.
func (f Field) Storage() Pos { return Pos{X: f.Width / 2, Y: f.Height / 2} }

func (f Field) Contains(p Pos) bool {
	return p.X >= 0 && p.X < f.Width && p.Y >= 0 && p.Y < f.Height
}

// excluded reports whether p lies in the band around storage that is never seeded.
func (f Field) excluded(p Pos) bool {
	s := f.Storage()
	return mathx.AbsInt(p.X-s.X) <= f.Width/10 && mathx.AbsInt(p.Y-s.Y) <= f.Height/10
}

// spawnBox returns the inclusive bounds bots are spawned in: +/- W/5, H/5
// around storage, clipped to the field.
func (f Field) spawnBox() (lo, hi Pos) {
	s := f.Storage()
	lo = Pos{X: mathx.ClampInt(s.X-f.Width/5, 0, f.Width-1), Y: mathx.ClampInt(s.Y-f.Height/5, 0, f.Height-1)}
	hi = Pos{X: mathx.ClampInt(s.X+f.Width/5, 0, f.Width-1), Y: mathx.ClampInt(s.Y+f.Height/5, 0, f.Height-1)}
	return lo, hi
}

func (f Field) spawnArea() int {
	lo, hi := f.spawnBox()
	return (hi.X - lo.X + 1) * (hi.Y - lo.Y + 1)
}
