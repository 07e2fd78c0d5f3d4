package mathx

import "testing"

func TestFloorDivF_RoundsTowardNegativeInfinity(t *testing.T) {
	cases := []struct {
		a, b float64
		want int
	}{
		{3, 1.5, 2},
		{1, 1.5, 0},
		{-1, 1.5, -1},
		{-3, 1.5, -2},
		{-4.5, 1.5, -3},
		{0, 1.5, 0},
	}
	for _, c := range cases {
		if got := FloorDivF(c.a, c.b); got != c.want {
			t.Fatalf("FloorDivF(%v,%v)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(-3, 0, 9); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := ClampInt(12, 0, 9); got != 9 {
		t.Fatalf("got %d", got)
	}
	if got := ClampInt(4, 0, 9); got != 4 {
		t.Fatalf("got %d", got)
	}
}

func TestSignAndAbs(t *testing.T) {
	if SignInt(-7) != -1 || SignInt(0) != 0 || SignInt(5) != 1 {
		t.Fatalf("SignInt mismatch")
	}
	if AbsInt(-7) != 7 || AbsInt(7) != 7 {
		t.Fatalf("AbsInt mismatch")
	}
}
