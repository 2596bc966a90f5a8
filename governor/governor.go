package governor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Verdict is the binary outcome of one scored line.
type Verdict int

const (
	Verified Verdict = iota
	Blocked
)

func (v Verdict) String() string {
	if v == Blocked {
		return "BLOCKED"
	}
	return "VERIFIED"
}

// Config holds the decision constants. Steps is how long the wave gets to
// find self-interference before the reading; Threshold is the entropy above
// which a line is dropped. Defaults are the reference values.
type Config struct {
	Steps     int     `yaml:"steps"`
	Threshold float64 `yaml:"threshold"`
}

func DefaultConfig() Config {
	return Config{Steps: 70, Threshold: 0.618}
}

// scorer is everything the governor needs from the lattice: one full
// inject+evolve pass yielding the entropy scalar, as a single uninterrupted
// critical section.
type scorer interface {
	Evolve(text string, steps int) float64
}

// Report describes one judged line.
type Report struct {
	ID      string
	Session string
	Text    string
	Entropy float64
	Verdict Verdict
	Elapsed time.Duration
}

// Governor pulls lines off a stream, runs each through the lattice, and
// forwards the coherent ones. Blocked lines never reach the accepted
// channel; they only show up on the status log.
type Governor struct {
	cfg     Config
	field   scorer
	session string
	logf    func(format string, args ...any)
	observe func(Report)
}

func New(cfg Config, field scorer, session string) *Governor {
	return &Governor{
		cfg:     cfg,
		field:   field,
		session: session,
		logf:    func(string, ...any) {},
		observe: func(Report) {},
	}
}

// SetLogger routes the per-line status output. The status channel is
// separate from the accepted channel and never pollutes it.
func (g *Governor) SetLogger(fn func(format string, args ...any)) {
	if fn != nil {
		g.logf = fn
	}
}

// OnReport registers an observer called once per judged line, after the
// verdict. Observers must not block; they run on the governor goroutine.
func (g *Governor) OnReport(fn func(Report)) {
	if fn != nil {
		g.observe = fn
	}
}

// Run consumes r line by line until it closes. Whitespace is trimmed,
// blank lines are skipped without a verdict or a log line, everything else
// is judged. Accepted lines come out of w verbatim, in input order.
// Lines can be arbitrarily long; everything past N² is ignored at injection,
// so length is never an error here.
func (g *Governor) Run(r io.Reader, accepted io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if text := strings.TrimSpace(line); text != "" {
			g.Judge(text, accepted)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Judge runs one trimmed line through the full inject+evolve+threshold
// cycle. The comparison is strictly greater-than: entropy exactly at the
// threshold still verifies.
func (g *Governor) Judge(text string, accepted io.Writer) Report {
	start := time.Now()
	entropy := g.field.Evolve(text, g.cfg.Steps)

	rep := Report{
		ID:      uuid.NewString(),
		Session: g.session,
		Text:    text,
		Entropy: entropy,
		Elapsed: time.Since(start),
	}

	if entropy > g.cfg.Threshold {
		rep.Verdict = Blocked
		g.logf("\x1b[91mBLOCKED\x1b[0m   Hallucination — entropy %.3f > %v", entropy, g.cfg.Threshold)
	} else {
		rep.Verdict = Verified
		g.logf("\x1b[92mVERIFIED\x1b[0m  Coherent — entropy %.3f", entropy)
		fmt.Fprintln(accepted, text)
	}

	g.observe(rep)
	return rep
}
