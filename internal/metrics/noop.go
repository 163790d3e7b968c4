package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(status string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncLogout is a no-op.
func (n *NoopRecorder) IncLogout() {}

// IncSessionCacheHit is a no-op.
func (n *NoopRecorder) IncSessionCacheHit() {}

// IncSessionCacheMiss is a no-op.
func (n *NoopRecorder) IncSessionCacheMiss() {}

// AddSessionsSwept is a no-op.
func (n *NoopRecorder) AddSessionsSwept(count int64) {}

// IncDeposit is a no-op.
func (n *NoopRecorder) IncDeposit(status string) {}

// ObserveDepositDuration is a no-op.
func (n *NoopRecorder) ObserveDepositDuration(duration time.Duration) {}
