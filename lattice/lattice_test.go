package lattice

import (
	"math"
	"strings"
	"testing"
)

const refSteps = 70

// sameBits compares entropy values bit for bit. Diverging inputs leave NaN
// in the cache, and NaN never compares equal to itself.
func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}

func TestDeterminism(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())

	ea := a.Evolve("hello", refSteps)
	eb := b.Evolve("hello", refSteps)

	if !sameBits(ea, eb) {
		t.Errorf("same input diverged: %.17g vs %.17g", ea, eb)
	}
}

func TestHelloReferenceEntropy(t *testing.T) {
	// Recorded reference behavior for "hello" under the default constants:
	// the evolution is unstable, amplitudes overflow around step 22, and the
	// dissonance sum degenerates to NaN. Clamping passes NaN through, and a
	// NaN entropy verifies because it never exceeds the threshold.
	e := New(DefaultConfig()).Evolve("hello", refSteps)

	if !math.IsNaN(e) {
		t.Errorf("entropy(hello) = %.17g, want the recorded NaN blow-up", e)
	}
}

func TestInjectOverwrites(t *testing.T) {
	f := New(DefaultConfig())
	f.Inject("this line is about to be thrown away entirely")
	got := f.Evolve("the survivor", refSteps)

	fresh := New(DefaultConfig()).Evolve("the survivor", refSteps)

	if !sameBits(got, fresh) {
		t.Errorf("stale field leaked into the score: %.17g vs %.17g", got, fresh)
	}
}

func TestEvolveMatchesManualSequence(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())

	ea := a.Evolve("piecewise", refSteps)

	b.Inject("piecewise")
	for i := 0; i < refSteps; i++ {
		b.Step()
	}

	if eb := b.Entropy(); !sameBits(ea, eb) {
		t.Errorf("Evolve %.17g != Inject+Step×%d %.17g", ea, refSteps, eb)
	}
}

func TestEmptyInputIsFixedPoint(t *testing.T) {
	f := New(DefaultConfig())
	e := f.Evolve("", refSteps)

	if e != 0 {
		t.Errorf("entropy of the zero field = %v, want exactly 0", e)
	}
	for i, c := range f.psi {
		if c != 0 {
			t.Fatalf("cell %d drifted off zero: %v", i, c)
		}
	}
}

func TestTruncationBeyondGrid(t *testing.T) {
	cfg := DefaultConfig()
	cells := cfg.Size * cfg.Size

	long := strings.Repeat("entropy is a harsh mistress. ", cells/20+40)
	if len(long) <= cells {
		t.Fatalf("test input too short: %d bytes", len(long))
	}

	full := New(cfg).Evolve(long, refSteps)
	cut := New(cfg).Evolve(long[:cells], refSteps)

	if !sameBits(full, cut) {
		t.Errorf("bytes past N² influenced the score: %.17g vs %.17g", full, cut)
	}
}

func TestWraparound(t *testing.T) {
	size := 80 * 80

	cases := []struct {
		name string
		i    int
		want int
	}{
		{"up neighbor of index 0", 0 - 80, size - 80},
		{"right neighbor of last index", size - 1 + 1, 0},
		{"left neighbor of index 0", -1, size - 1},
		{"down neighbor of last index", size - 1 + 80, 79},
		{"interior index untouched", 4100, 4100},
	}

	for _, c := range cases {
		if got := wrap(c.i, size); got != c.want {
			t.Errorf("%s: wrap(%d, %d) = %d, want %d", c.name, c.i, size, got, c.want)
		}
	}
}

func TestEntropyNeverEscapesUnitInterval(t *testing.T) {
	cfg := DefaultConfig()
	hot := strings.Repeat("\xff", cfg.Size*cfg.Size)

	f := New(cfg)
	f.Inject(hot)
	for i := 0; i < refSteps; i++ {
		f.Step()
		if e := f.Entropy(); e < 0 || e > 1 {
			t.Fatalf("entropy escaped the unit interval at step %d: %v", i+1, e)
		}
	}
}

func TestEntropyStaleAfterInject(t *testing.T) {
	f := New(DefaultConfig())
	f.Evolve("prime the cache", refSteps)
	before := f.Entropy()

	f.Inject("new line, no step yet")
	if got := f.Entropy(); !sameBits(got, before) {
		t.Errorf("Inject recomputed entropy: %v, want stale %v", got, before)
	}
}
