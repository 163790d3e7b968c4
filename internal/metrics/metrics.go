// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncRegistration(status string) // status: "success", "duplicate" or "failed"
	IncLogin(status string)        // status: "success" or "failed"
	IncLogout()

	// Session metrics
	IncSessionCacheHit()
	IncSessionCacheMiss()
	AddSessionsSwept(n int64)

	// Ledger metrics
	IncDeposit(status string) // status: "success" or "rejected"
	ObserveDepositDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
