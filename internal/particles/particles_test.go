package particles

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewBox(t *testing.T) {
	tests := []struct {
		name  string
		size  float64
		valid bool
	}{
		{"positive", 10, true},
		{"fraction", 0.5, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"NaN", math.NaN(), false},
		{"+Inf", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBox(tt.size)
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if b.Half != tt.size/2 {
					t.Errorf("Half = %v, want %v", b.Half, tt.size/2)
				}
				return
			}
			if !errors.Is(err, ErrInvalidBox) {
				t.Errorf("expected ErrInvalidBox, got %v", err)
			}
		})
	}
}

func TestMinimumImage(t *testing.T) {
	b, _ := NewBox(10)

	tests := []struct {
		c    float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{4.5, 4.5},
		{5, 5},
		{-5, 5},
		{6, -4},
		{-6, 4},
		{15, 5},
		{23, 3},
		{-23, -3},
	}

	for _, tt := range tests {
		if got := b.MinimumImage(tt.c); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MinimumImage(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestMinimumImageRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []float64{1, 2.5, 10, 37} {
		b, _ := NewBox(size)
		for i := 0; i < 20000; i++ {
			c := (rng.Float64() - 0.5) * 20 * size
			m := b.MinimumImage(c)
			if m <= -b.Half || m > b.Half {
				t.Fatalf("size %v: MinimumImage(%v) = %v outside (-%v, %v]", size, c, m, b.Half, b.Half)
			}
			// the image must be a periodic copy of c
			k := (c - m) / size
			if math.Abs(k-math.Round(k)) > 1e-6 {
				t.Fatalf("size %v: %v is not a periodic image of %v", size, m, c)
			}
		}
	}
}

func TestWrapDeltaRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	b, _ := NewBox(10)
	for i := 0; i < 20000; i++ {
		a := b.MinimumImage((rng.Float64() - 0.5) * 100)
		c := b.MinimumImage((rng.Float64() - 0.5) * 100)
		d := b.WrapDelta(c - a)
		if d < -b.Half || d > b.Half {
			t.Fatalf("WrapDelta(%v - %v) = %v outside [-5, 5]", c, a, d)
		}
	}
}

func TestSeparation(t *testing.T) {
	b, _ := NewBox(10)
	d := b.Separation(r3.Vec{X: -4.5}, r3.Vec{X: 4.5, Y: 1})
	if math.Abs(d.X-(-1)) > 1e-12 || d.Y != 1 || d.Z != 0 {
		t.Errorf("Separation = %v, want {-1 1 0}", d)
	}
}

func TestNewLattice(t *testing.T) {
	b, _ := NewBox(2)
	sys, err := NewLattice(b, LatticeSpec{DistToEdge: 0, Step: 1, Count: 8}, false)
	if err != nil {
		t.Fatalf("lattice failed: %v", err)
	}

	want := []r3.Vec{
		{X: -1, Y: -1, Z: -1},
		{X: -1, Y: -1, Z: 0},
		{X: -1, Y: 0, Z: -1},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: -1},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 0},
	}
	if sys.Len() != len(want) {
		t.Fatalf("expected %d particles, got %d", len(want), sys.Len())
	}
	for i, p := range want {
		if sys.Positions[i] != p {
			t.Errorf("particle %d = %v, want %v", i, sys.Positions[i], p)
		}
	}
	if sys.Charges != nil {
		t.Error("uncharged lattice should have nil charges")
	}
}

func TestNewLatticeTooSmall(t *testing.T) {
	b, _ := NewBox(2)
	_, err := NewLattice(b, LatticeSpec{DistToEdge: 0, Step: 1, Count: 9}, false)
	if !errors.Is(err, ErrLatticeTooSmall) {
		t.Fatalf("expected ErrLatticeTooSmall, got %v", err)
	}

	var le *LatticeError
	if !errors.As(err, &le) {
		t.Fatal("expected *LatticeError")
	}
	if le.Count != 8 || le.Want != 9 {
		t.Errorf("counts = %d/%d, want 8/9", le.Count, le.Want)
	}
	if !strings.Contains(err.Error(), "decrease initial_dist") {
		t.Errorf("message %q does not mention initial_dist", err.Error())
	}
}

func TestNewLatticeTruncates(t *testing.T) {
	b, _ := NewBox(10)
	sys, err := NewLattice(b, LatticeSpec{DistToEdge: 1, Step: 1, Count: 11}, true)
	if err != nil {
		t.Fatalf("lattice failed: %v", err)
	}
	if sys.Len() != 11 {
		t.Fatalf("expected 11 particles, got %d", sys.Len())
	}
	// z is innermost: the tenth point starts the next y row
	if sys.Positions[9] != (r3.Vec{X: -4.5, Y: -3.5, Z: -4.5}) {
		t.Errorf("particle 9 = %v", sys.Positions[9])
	}
	for i, q := range sys.Charges {
		want := -1
		if i%2 == 1 {
			want = 1
		}
		if q != want {
			t.Errorf("charge %d = %d, want %d", i, q, want)
		}
	}
}

func TestNewLatticeInvalid(t *testing.T) {
	b, _ := NewBox(10)
	for _, spec := range []LatticeSpec{
		{Step: 0, Count: 1},
		{Step: -1, Count: 1},
		{Step: 1, Count: 0},
	} {
		if _, err := NewLattice(b, spec, false); !errors.Is(err, ErrInvalidLattice) {
			t.Errorf("spec %+v: expected ErrInvalidLattice, got %v", spec, err)
		}
	}
}

func TestSystemClone(t *testing.T) {
	b, _ := NewBox(10)
	sys, _ := NewLattice(b, LatticeSpec{DistToEdge: 1, Step: 1, Count: 4}, true)

	c := sys.Clone()
	c.Positions[0].X = 99
	if sys.Positions[0].X == 99 {
		t.Error("Clone did not create independent positions")
	}
	if c.At(1).Charge != 1 {
		t.Errorf("clone charge = %d, want 1", c.At(1).Charge)
	}

	if err := sys.CopyFrom(c); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if sys.Positions[0].X != 99 {
		t.Error("CopyFrom did not copy positions")
	}

	short := &System{Box: b, Positions: make([]r3.Vec, 2)}
	if err := short.CopyFrom(sys); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestSystemImages(t *testing.T) {
	b, _ := NewBox(10)
	sys := &System{Box: b, Positions: []r3.Vec{{X: 6, Y: -6, Z: 0}, {X: 1, Y: 2, Z: 3}}}

	images := sys.Images(nil)
	if images[0] != (r3.Vec{X: -4, Y: 4, Z: 0}) {
		t.Errorf("image 0 = %v", images[0])
	}
	if sys.Positions[0].X != 6 {
		t.Error("Images must not wrap stored positions")
	}

	reused := sys.Images(images)
	if &reused[0] != &images[0] {
		t.Error("Images should reuse a large enough buffer")
	}
}
