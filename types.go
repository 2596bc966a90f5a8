package main

import "verity/governor"

// LogEvent carries one status line into the dashboard log pane.
type LogEvent struct{ Msg string }

// VerdictEvent carries one judged line into the dashboard.
type VerdictEvent struct{ Report governor.Report }

// HealthSnapshot is the periodic system readout shown in the header.
type HealthSnapshot struct {
	CPU string
}
