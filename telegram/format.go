package telegram

import (
	"fmt"
	"strings"
	"time"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
)

func splitArgs(args string) []string {
	return strings.Fields(args)
}

func formatCheck(snap keepalive.Snapshot, target string) string {
	checked := snap.LastCheckedAt.Format("2006-01-02 15:04:05")
	if snap.Up() {
		return fmt.Sprintf("%s\nStatus: online\nHTTP: %d\nLatency: %v\nChecked at: %s",
			target, snap.LastStatusCode, snap.LastLatency.Round(time.Millisecond), checked)
	}
	return fmt.Sprintf("%s\nStatus: offline (%s)\nChecked at: %s\nThe site may be spinning up. Try again in 30 seconds.",
		target, snap.LastReason, checked)
}

func formatWake(snap keepalive.Snapshot, target string) string {
	if snap.Up() {
		return fmt.Sprintf("Site is awake.\n%s\nHTTP: %d\nTime: %s",
			target, snap.LastStatusCode, snap.LastCheckedAt.Format("15:04:05"))
	}
	return fmt.Sprintf("Failed to wake site.\n%s\nReason: %s\nThe site may be down. Check the deployment dashboard.",
		target, snap.LastReason)
}

func formatStatus(snap keepalive.Snapshot, checking, running bool, target string, interval time.Duration) string {
	state := "idle"
	if checking {
		state = "checking"
	}
	autoPing := "stopped"
	if running {
		autoPing = fmt.Sprintf("every %v", interval)
	}

	current := "unknown"
	if snap.TotalPings > 0 {
		if snap.Up() {
			current = "online"
		} else {
			current = fmt.Sprintf("offline (%s)", snap.LastReason)
		}
	}

	lastCheck := "never"
	if !snap.LastCheckedAt.IsZero() {
		lastCheck = snap.LastCheckedAt.Format("2006-01-02 15:04:05")
	}

	return fmt.Sprintf(`Bot status:
Target: %s
Auto-ping: %s
Scheduler: %s
Site: %s
Last check: %s`, target, autoPing, state, current, lastCheck)
}

func formatStats(snap keepalive.Snapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ping statistics:\n")
	fmt.Fprintf(&b, "Total pings: %d\n", snap.TotalPings)
	fmt.Fprintf(&b, "Successful: %d\n", snap.Successes)
	fmt.Fprintf(&b, "Failed: %d\n", snap.Failures)
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", snap.SuccessRate())
	fmt.Fprintf(&b, "Consecutive failures: %d\n", snap.ConsecutiveFailures)

	if !snap.LastSuccessAt.IsZero() {
		fmt.Fprintf(&b, "Last success: %s\n", snap.LastSuccessAt.Format("2006-01-02 15:04:05"))
	}
	if !snap.LastFailureAt.IsZero() {
		fmt.Fprintf(&b, "Last failure: %s\n", snap.LastFailureAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(&b, "Running for: %v", snap.Uptime(now).Round(time.Second))
	return b.String()
}
