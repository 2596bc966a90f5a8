package main

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// StartHealthLoop samples CPU usage on an interval and feeds the dashboard
// header. Readings that fail just show up as N/A; the loop never stops.
func StartHealthLoop(interval time.Duration) {
	go func() {
		for {
			snap := HealthSnapshot{CPU: "N/A"}
			if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
				snap.CPU = fmt.Sprintf("%.1f%%", usage[0])
			}

			if uiActive.Load() {
				select {
				case logChannel <- snap:
				default:
				}
			}

			time.Sleep(interval)
		}
	}()
}
