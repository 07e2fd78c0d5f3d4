package world

import "testing"

func view(f Field, occupied []Pos, res map[Pos]int, trails map[Pos]int) *EnvView {
	rs := NewResourceStore()
	for p, q := range res {
		rs.Set(p, q)
	}
	ts := NewTrailStore()
	for p, v := range trails {
		ts.set(p, v)
	}
	occ := make(map[Pos]struct{}, len(occupied))
	for _, p := range occupied {
		occ[p] = struct{}{}
	}
	return &EnvView{Field: f, Occupied: occ, Resources: rs, Trails: ts}
}

func TestCollisionMask_DiagonalKeepRight(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 5, Y: 5}
	cases := []struct {
		name  string
		other Pos
		want  Dir
	}{
		{"up-left", Pos{X: 4, Y: 4}, Left},
		{"up-right", Pos{X: 4, Y: 6}, Up},
		{"down-right", Pos{X: 6, Y: 6}, Right},
		{"down-left", Pos{X: 6, Y: 4}, Down},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, carrying := range []bool{false, true} {
				v := view(f, []Pos{p, tc.other}, nil, nil)
				got := collisionMask(p, carrying, f.Storage(), v)
				if got != dirsOf(tc.want) {
					t.Fatalf("carrying=%v mask=%v want [%v]", carrying, got.list(), tc.want)
				}
			}
		})
	}
}

func TestCollisionMask_OrthogonalOnlyWhileSearchingOffAxis(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	storage := f.Storage()

	off := Pos{X: 5, Y: 5}
	v := view(f, []Pos{off, {X: 5, Y: 7}, {X: 4, Y: 5}}, nil, nil)
	if got := collisionMask(off, false, storage, v); got != dirsOf(Right, Up) {
		t.Fatalf("searching off-axis mask=%v want [up right]", got.list())
	}
	if got := collisionMask(off, true, storage, v); !got.empty() {
		t.Fatalf("carrying mask=%v want empty", got.list())
	}

	// Same row as storage: orthogonal neighbours do not block.
	onAxis := Pos{X: storage.X, Y: 5}
	v = view(f, []Pos{onAxis, {X: storage.X, Y: 6}}, nil, nil)
	if got := collisionMask(onAxis, false, storage, v); !got.empty() {
		t.Fatalf("on-axis mask=%v want empty", got.list())
	}

	// Three cells away is out of range.
	v = view(f, []Pos{off, {X: 5, Y: 8}}, nil, nil)
	if got := collisionMask(off, false, storage, v); !got.empty() {
		t.Fatalf("distance-3 mask=%v want empty", got.list())
	}
}

func TestWallMask(t *testing.T) {
	f := Field{Width: 10, Height: 6}
	cases := []struct {
		p    Pos
		want dirSet
	}{
		{Pos{X: 0, Y: 0}, dirsOf(Up, Left)},
		{Pos{X: 9, Y: 5}, dirsOf(Down, Right)},
		{Pos{X: 0, Y: 3}, dirsOf(Up)},
		{Pos{X: 4, Y: 5}, dirsOf(Right)},
		{Pos{X: 4, Y: 3}, 0},
	}
	for _, tc := range cases {
		if got := wallMask(tc.p, f); got != tc.want {
			t.Fatalf("wallMask(%v)=%v want %v", tc.p, got.list(), tc.want.list())
		}
	}
	// A 1x1 field blocks everything.
	if got := wallMask(Pos{}, Field{Width: 1, Height: 1}); got != allDirs {
		t.Fatalf("1x1 mask=%v", got.list())
	}
}

func TestScanFood(t *testing.T) {
	p := Pos{X: 5, Y: 5}
	cases := []struct {
		name string
		res  map[Pos]int
		want dirSet
	}{
		{"adjacent", map[Pos]int{{X: 5, Y: 4}: 1}, dirsOf(Left)},
		{"adjacent wins over two away", map[Pos]int{{X: 5, Y: 4}: 1, {X: 5, Y: 7}: 1}, dirsOf(Left)},
		{"two away", map[Pos]int{{X: 7, Y: 5}: 1}, dirsOf(Down)},
		{"diagonal adds both axes", map[Pos]int{{X: 4, Y: 6}: 1}, dirsOf(Up, Right)},
		{"diagonal and two away", map[Pos]int{{X: 6, Y: 4}: 1, {X: 3, Y: 5}: 1}, dirsOf(Down, Left, Up)},
		{"nothing in range", map[Pos]int{{X: 8, Y: 5}: 1, {X: 3, Y: 3}: 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := view(Field{Width: 20, Height: 20}, nil, tc.res, nil)
			if got := scanFood(p, v.Resources); got != tc.want {
				t.Fatalf("scanFood=%v want %v", got.list(), tc.want.list())
			}
		})
	}
}

func TestHomeward(t *testing.T) {
	storage := Pos{X: 10, Y: 10}
	cases := []struct {
		p    Pos
		want dirSet
	}{
		{Pos{X: 5, Y: 5}, dirsOf(Down, Right)},
		{Pos{X: 15, Y: 15}, dirsOf(Up, Left)},
		{Pos{X: 10, Y: 3}, dirsOf(Right)},
		{Pos{X: 12, Y: 10}, dirsOf(Up)},
		{storage, 0},
	}
	for _, tc := range cases {
		if got := homeward(tc.p, storage); got != tc.want {
			t.Fatalf("homeward(%v)=%v want %v", tc.p, got.list(), tc.want.list())
		}
	}
}

func TestSenseTrail_ExcludesHomeward(t *testing.T) {
	p := Pos{X: 5, Y: 5}
	trails := map[Pos]int{
		{X: 5, Y: 6}: 3, // right, homeward
		{X: 6, Y: 5}: 3, // down, homeward
		{X: 4, Y: 5}: 1, // up
	}
	v := view(Field{Width: 20, Height: 20}, nil, nil, trails)
	if got := senseTrail(p, v.Trails, Pos{X: 10, Y: 10}); got != dirsOf(Up) {
		t.Fatalf("senseTrail=%v want [up]", got.list())
	}
}

func TestUpdate_PickupDoesNotMove(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 3, Y: 3}
	v := view(f, []Pos{p}, map[Pos]int{p: 2}, nil)
	b := Bot{Pos: p, Behavior: TrailAware(1, 0)}
	d := b.Update(v, NewRandomSource(1))
	if !d.PickedUp || d.Moved || b.Pos != p {
		t.Fatalf("decision=%+v bot=%+v", d, b)
	}
	if !b.CarryingFood || !b.LeaveMark || b.TrackingOn {
		t.Fatalf("bot flags after pickup: %+v", b)
	}
	if !d.Deposit {
		t.Fatal("p_leave=1 pickup should deposit on the pickup cell")
	}
}

func TestUpdate_PlainBotIgnoresTrails(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 5, Y: 5}
	v := view(f, []Pos{p}, map[Pos]int{p: 1}, map[Pos]int{{X: 4, Y: 5}: 5})
	b := Bot{Pos: p, Behavior: Plain()}
	d := b.Update(v, NewRandomSource(1))
	if !d.PickedUp || b.LeaveMark || d.Deposit {
		t.Fatalf("plain pickup: decision=%+v bot=%+v", d, b)
	}
}

func TestUpdate_FollowsTrailWhenTracking(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 5, Y: 5}
	v := view(f, []Pos{p}, nil, map[Pos]int{{X: 4, Y: 5}: 5})
	for seed := int64(0); seed < 20; seed++ {
		b := Bot{Pos: p, Behavior: TrailAware(0, 1)}
		d := b.Update(v, NewRandomSource(seed))
		if !b.TrackingOn || d.Dir != Up || b.Pos != (Pos{X: 4, Y: 5}) {
			t.Fatalf("seed %d: decision=%+v bot=%+v", seed, d, b)
		}
	}
}

func TestUpdate_RefusedTrailFallsBackToRandomWalk(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 5, Y: 5}
	v := view(f, []Pos{p}, nil, map[Pos]int{{X: 4, Y: 5}: 5})
	seen := map[Dir]bool{}
	for seed := int64(0); seed < 200; seed++ {
		b := Bot{Pos: p, Behavior: TrailAware(0, 0)}
		d := b.Update(v, NewRandomSource(seed))
		if b.TrackingOn || !d.Moved {
			t.Fatalf("seed %d: decision=%+v bot=%+v", seed, d, b)
		}
		seen[d.Dir] = true
	}
	if len(seen) != 4 {
		t.Fatalf("random walk used only %v", seen)
	}
}

func TestUpdate_FoodBeatsTrail(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 5, Y: 5}
	v := view(f, []Pos{p}, map[Pos]int{{X: 5, Y: 4}: 1}, map[Pos]int{{X: 4, Y: 5}: 5})
	b := Bot{Pos: p, TrackingOn: true, Behavior: TrailAware(0, 1)}
	if d := b.Update(v, NewRandomSource(3)); d.Dir != Left {
		t.Fatalf("moved %v, want left toward food", d.Dir)
	}
}

func TestUpdate_StoresAtStorage(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	s := f.Storage()
	v := view(f, []Pos{s}, nil, nil)
	b := Bot{Pos: s, CarryingFood: true, LeaveMark: true, Behavior: TrailAware(1, 1)}
	d := b.Update(v, NewRandomSource(1))
	if !d.Stored || d.Moved || d.Deposit || b.CarryingFood || b.LeaveMark {
		t.Fatalf("store: decision=%+v bot=%+v", d, b)
	}
}

func TestUpdate_ReturningMovesHomeward(t *testing.T) {
	f := Field{Width: 20, Height: 20}
	p := Pos{X: 4, Y: 15}
	v := view(f, []Pos{p}, nil, nil)
	for seed := int64(0); seed < 30; seed++ {
		b := Bot{Pos: p, CarryingFood: true, Behavior: Plain()}
		d := b.Update(v, NewRandomSource(seed))
		if d.Dir != Down && d.Dir != Left {
			t.Fatalf("seed %d: returning bot moved %v", seed, d.Dir)
		}
	}
}
