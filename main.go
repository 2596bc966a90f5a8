package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"verity/governor"
	"verity/lattice"
)

const version = "0.1.0"

var (
	flagConfig   string
	flagHeadless bool
	flagMetrics  string
)

var rootCmd = &cobra.Command{
	Use:   "verity",
	Short: "Coherence governor for line-oriented pipes",
	Long: `verity reads newline-delimited text on stdin, scores each line by
evolving it on a nonlinear complex lattice, and forwards only the lines whose
entropy stays under the threshold. Blocked lines vanish from stdout; the
status channel on stderr reports every verdict. Pipe any model's output
through it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML config path (defaults are the reference constants)")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "disable the terminal dashboard")
	rootCmd.Flags().StringVar(&flagMetrics, "metrics", "", "serve Prometheus metrics on this address (e.g. :9119)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagMetrics != "" {
		cfg.Metrics = flagMetrics
	}

	session := uuid.NewString()
	field := lattice.New(cfg.Lattice)

	Log("🌀 verity %s — session %s", version, session)
	Log("👁  Listening on stdin | pipe model output here")
	Log(strings.Repeat("─", 53))

	if cfg.Metrics != "" {
		if err := StartMetricsServer(cfg.Metrics); err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		Log("📊 Metrics on http://%s/metrics", cfg.Metrics)
	}

	gov := governor.New(cfg.Governor, field, session)
	gov.SetLogger(func(format string, args ...any) { Log(format, args...) })
	gov.OnReport(func(rep governor.Report) {
		RecordVerdict(rep)
		if uiActive.Load() {
			select {
			case logChannel <- VerdictEvent{Report: rep}:
			default:
			}
		}
	})

	// The dashboard is a passive observer. It only makes sense on a real
	// terminal, and losing it must never cost a verdict.
	if !flagHeadless && isatty.IsTerminal(os.Stderr.Fd()) {
		go StartDashboard(field, session, cfg.Governor.Threshold)
		StartHealthLoop(2 * time.Second)
	}

	return gov.Run(os.Stdin, os.Stdout)
}
