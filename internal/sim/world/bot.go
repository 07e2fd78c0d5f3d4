package world

import "colony.ai/internal/sim/world/logic/mathx"

type BehaviorKind uint8

const (
	// BehaviorPlain bots forage without pheromones.
	BehaviorPlain BehaviorKind = iota
	// BehaviorTrailAware bots may mark their homeward path and follow marks.
	BehaviorTrailAware
)

// Behavior is the tagged bot variant. The probabilities only matter for
// BehaviorTrailAware.
type Behavior struct {
	Kind         BehaviorKind
	PLeaveTrail  float64
	PFollowTrail float64
}

func Plain() Behavior { return Behavior{Kind: BehaviorPlain} }

func TrailAware(pLeave, pFollow float64) Behavior {
	return Behavior{Kind: BehaviorTrailAware, PLeaveTrail: pLeave, PFollowTrail: pFollow}
}

func (b Behavior) trailAware() bool { return b.Kind == BehaviorTrailAware }

func (b Behavior) Name() string {
	if b.trailAware() {
		return BehaviorNameTrailAware
	}
	return BehaviorNamePlain
}

// Bot is one forager. A bot carrying food is Returning; otherwise Searching.
type Bot struct {
	Pos          Pos
	CarryingFood bool
	LeaveMark    bool
	TrackingOn   bool
	Behavior     Behavior
}

// EnvView is what a bot sees during one tick. Occupied is captured at tick
// start and Trails does not change until every bot has moved. Resources is
// the live store, so a unit taken by an earlier bot in iteration order is
// already gone. A bot never keeps the view.
type EnvView struct {
	Field     Field
	Occupied  map[Pos]struct{}
	Resources ResourceLookup
	Trails    TrailLookup
}

func (v *EnvView) occupied(p Pos) bool {
	_, ok := v.Occupied[p]
	return ok
}

// Decision is the outcome of one bot update.
type Decision struct {
	From     Pos
	To       Pos
	Moved    bool
	Dir      Dir
	PickedUp bool
	Stored   bool
	// Deposit asks the world to mark To with a fresh trail this tick.
	Deposit bool
}

// Update runs one tick of the decision state machine, moves the bot by at
// most one cell and reports what happened. Resource consumption for a pickup
// is applied by the caller before the next bot is updated.
func (b *Bot) Update(v *EnvView, rng *RandomSource) Decision {
	d := Decision{From: b.Pos, To: b.Pos}
	storage := v.Field.Storage()

	options := allDirs
	var foodDir, trailDir dirSet

	switch {
	case !b.CarryingFood && v.Resources.Has(b.Pos):
		b.pickUp(rng)
		d.PickedUp = true
		options = 0
	case !b.CarryingFood:
		foodDir = scanFood(b.Pos, v.Resources)
		if b.Behavior.trailAware() {
			trailDir = senseTrail(b.Pos, v.Trails, storage)
			if !b.TrackingOn && !trailDir.empty() {
				if rng.Chance(b.Behavior.PFollowTrail) {
					b.TrackingOn = true
				} else {
					trailDir = 0
				}
			}
		}
	case b.Pos == storage:
		b.store()
		d.Stored = true
		options = 0
	default:
		options = homeward(b.Pos, storage)
	}

	blocked := collisionMask(b.Pos, b.CarryingFood, storage, v) | wallMask(b.Pos, v.Field)
	foodDir &^= blocked
	options &^= blocked

	var choice dirSet
	switch {
	case !foodDir.empty():
		choice = foodDir
	case !trailDir.empty():
		choice = trailDir
	case !options.empty():
		choice = options
	}
	if !choice.empty() {
		d.Dir = choice.pick(rng)
		d.Moved = true
		b.Pos = d.Dir.Step(b.Pos, 1)
		d.To = b.Pos
	}
	d.Deposit = b.LeaveMark
	return d
}

func (b *Bot) pickUp(rng *RandomSource) {
	b.CarryingFood = true
	if b.Behavior.trailAware() {
		if rng.Chance(b.Behavior.PLeaveTrail) {
			b.LeaveMark = true
		}
		b.TrackingOn = false
	}
}

func (b *Bot) store() {
	b.CarryingFood = false
	b.LeaveMark = false
}

// scanFood looks one cell away first; only if nothing is there does it look
// two cells out orthogonally and one cell diagonally. A diagonal hit adds
// both of its component directions.
func scanFood(p Pos, res ResourceLookup) dirSet {
	var s dirSet
	for _, d := range allDirections {
		if res.Has(d.Step(p, 1)) {
			s = s.with(d)
		}
	}
	if !s.empty() {
		return s
	}
	for _, d := range allDirections {
		if res.Has(d.Step(p, 2)) {
			s = s.with(d)
		}
	}
	for _, dg := range diagonals {
		if res.Has(dg.at(p)) {
			s = s.with(dg.vertical).with(dg.horizontal)
		}
	}
	return s
}

// senseTrail reports adjacent trail cells, minus any direction that leads
// toward storage.
func senseTrail(p Pos, trails TrailLookup, storage Pos) dirSet {
	var s dirSet
	for _, d := range allDirections {
		if trails.Has(d.Step(p, 1)) {
			s = s.with(d)
		}
	}
	return s &^ homeward(p, storage)
}

// homeward is the set of axis moves that reduce the distance to storage.
func homeward(p, storage Pos) dirSet {
	var s dirSet
	switch mathx.SignInt(p.Y - storage.Y) {
	case 1:
		s = s.with(Left)
	case -1:
		s = s.with(Right)
	}
	switch mathx.SignInt(p.X - storage.X) {
	case 1:
		s = s.with(Up)
	case -1:
		s = s.with(Down)
	}
	return s
}

type diagonal struct {
	dx, dy     int
	vertical   Dir
	horizontal Dir
	// yield is the single direction dropped when another bot sits on this diagonal.
	yield Dir
}

func (d diagonal) at(p Pos) Pos { return Pos{X: p.X + d.dx, Y: p.Y + d.dy} }

// Keep-right traffic rule: the yielded direction per diagonal is fixed and
// not symmetric.
var diagonals = [...]diagonal{
	{dx: -1, dy: -1, vertical: Up, horizontal: Left, yield: Left},
	{dx: -1, dy: 1, vertical: Up, horizontal: Right, yield: Up},
	{dx: 1, dy: 1, vertical: Down, horizontal: Right, yield: Right},
	{dx: 1, dy: -1, vertical: Down, horizontal: Left, yield: Down},
}

// collisionMask uses the tick-start positions. Orthogonal neighbours at one
// and two cells only block a searching bot that is off both storage axes;
// occupied diagonals always apply the keep-right rule.
func collisionMask(p Pos, carrying bool, storage Pos, v *EnvView) dirSet {
	var s dirSet
	if !carrying && mathx.AbsInt(storage.X-p.X) >= 1 && mathx.AbsInt(storage.Y-p.Y) >= 1 {
		for _, d := range allDirections {
			if v.occupied(d.Step(p, 1)) || v.occupied(d.Step(p, 2)) {
				s = s.with(d)
			}
		}
	}
	for _, dg := range diagonals {
		if v.occupied(dg.at(p)) {
			s = s.with(dg.yield)
		}
	}
	return s
}

func wallMask(p Pos, f Field) dirSet {
	var s dirSet
	if p.X <= 0 {
		s = s.with(Up)
	}
	if p.X >= f.Width-1 {
		s = s.with(Down)
	}
	if p.Y <= 0 {
		s = s.with(Left)
	}
	if p.Y >= f.Height-1 {
		s = s.with(Right)
	}
	return s
}
