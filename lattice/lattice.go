package lattice

import (
	"math/cmplx"
	"sync"
)

// Config holds the physical constants of the lattice. The defaults are the
// reference parameters; changing any of them changes every entropy value the
// field will ever produce.
type Config struct {
	Size       int     `yaml:"size"`
	Dt         float64 `yaml:"dt"`
	Damping    float64 `yaml:"damping"`
	PhaseTwist float64 `yaml:"phase_twist"`
	Nonlinear  float64 `yaml:"nonlinear"`
}

func DefaultConfig() Config {
	return Config{
		Size:       80,
		Dt:         0.108,
		Damping:    0.991,
		PhaseTwist: 0.61,
		Nonlinear:  0.618,
	}
}

// Field is an N×N grid of complex amplitudes stored flat in row-major order,
// plus the entropy scalar cached from the last step. One instance lives for
// the whole process: the governor writes it, the dashboard only reads the
// scalar.
type Field struct {
	mu      sync.RWMutex
	cfg     Config
	psi     []complex128
	entropy float64
}

func New(cfg Config) *Field {
	return &Field{
		cfg: cfg,
		psi: make([]complex128, cfg.Size*cfg.Size),
	}
}

// wrap reduces a flat index onto the lattice with the Euclidean remainder,
// so negative offsets land at the far end instead of going out of range.
// Wraparound is on the flattened index, not on row/column coordinates: a
// left neighbor on a row boundary bleeds into the previous row. That is the
// topology the entropy values depend on, so it stays.
func wrap(i, size int) int {
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

// Inject overwrites the whole field with the scalar energy of text. Cell i
// gets byte i scaled to [0,1] as its real part and a fixed phase twist of
// that as its imaginary part. Bytes past N² are ignored. The cached entropy
// is stale until the next Step.
func (f *Field) Inject(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inject(text)
}

func (f *Field) inject(text string) {
	for i := range f.psi {
		f.psi[i] = 0
	}
	raw := []byte(text)
	limit := len(raw)
	if limit > len(f.psi) {
		limit = len(f.psi)
	}
	for i := 0; i < limit; i++ {
		v := float64(raw[i]) / 255.0
		f.psi[i] = complex(v, v*f.cfg.PhaseTwist)
	}
}

// Step advances the field by one time unit. Every cell is updated from the
// field as it stood at the start of the step: neighbor coupling through the
// discrete Laplacian, a nonlinear self-term that punishes amplitude spikes,
// a 90° rotation in the complex plane, then damping. The accumulated
// imaginary noise of the new field becomes the entropy.
func (f *Field) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step()
}

func (f *Field) step() {
	size := len(f.psi)
	n := f.cfg.Size

	next := make([]complex128, size)
	copy(next, f.psi)

	dissonance := 0.0
	rot := complex(0, f.cfg.Dt)
	damp := complex(f.cfg.Damping, 0)

	for i := 0; i < size; i++ {
		up := f.psi[wrap(i-n, size)]
		down := f.psi[wrap(i+n, size)]
		left := f.psi[wrap(i-1, size)]
		right := f.psi[wrap(i+1, size)]

		laplacian := up + down + left + right - 4*f.psi[i]

		mag := cmplx.Abs(f.psi[i])
		nonlinear := f.psi[i] * complex(1+f.cfg.Nonlinear*mag*mag, 0)

		next[i] += (laplacian - nonlinear) * rot
		next[i] *= damp

		im := imag(next[i])
		if im < 0 {
			im = -im
		}
		dissonance += im
	}

	f.psi = next
	f.entropy = clamp01(dissonance / float64(n))
}

// Entropy returns the scalar cached by the last Step. It holds the read
// lock only for the copy, so samplers never stall an evolution for long.
func (f *Field) Entropy() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.entropy
}

// Evolve runs a full scoring pass as one critical section: inject, the
// given number of steps, and the entropy read. Nothing can interleave
// another injection into the sequence.
func (f *Field) Evolve(text string, steps int) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inject(text)
	for s := 0; s < steps; s++ {
		f.step()
	}
	return f.entropy
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
