package world

// Dir is one of the four orthogonal unit moves.
type Dir uint8

const (
	Up Dir = iota
	Down
	Left
	Right
)

var allDirections = [...]Dir{Up, Down, Left, Right}

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "?"
}

// Step returns p moved n cells in direction d.
func (d Dir) Step(p Pos, n int) Pos {
	switch d {
	case Up:
		p.X -= n
	case Down:
		p.X += n
	case Left:
		p.Y -= n
	case Right:
		p.Y += n
	}
	return p
}

// dirSet is a small bitset over Dir. Iteration order is always
// Up, Down, Left, Right so that random picks are reproducible.
type dirSet uint8

const allDirs dirSet = 1<<Up | 1<<Down | 1<<Left | 1<<Right

func dirsOf(ds ...Dir) dirSet {
	var s dirSet
	for _, d := range ds {
		s = s.with(d)
	}
	return s
}

func (s dirSet) with(d Dir) dirSet { return s | 1<<d }
func (s dirSet) has(d Dir) bool    { return s&(1<<d) != 0 }
func (s dirSet) empty() bool       { return s == 0 }

func (s dirSet) list() []Dir {
	out := make([]Dir, 0, 4)
	for _, d := range allDirections {
		if s.has(d) {
			out = append(out, d)
		}
	}
	return out
}

// pick chooses uniformly among the members. s must be non-empty.
func (s dirSet) pick(rng *RandomSource) Dir {
	ds := s.list()
	return ds[rng.IntN(len(ds))]
}
