package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations          uint64
	RegistrationDuplicates uint64
	RegistrationFailures   uint64
	Logins                 uint64
	LoginFailures          uint64
	Logouts                uint64
	SessionCacheHits       uint64
	SessionCacheMisses     uint64
	SessionsSwept          int64
	Deposits               uint64
	DepositsRejected       uint64
	DepositDurationCount   uint64
	DepositDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	registrations          atomic.Uint64
	registrationDuplicates atomic.Uint64
	registrationFailures   atomic.Uint64
	logins                 atomic.Uint64
	loginFailures          atomic.Uint64
	logouts                atomic.Uint64
	sessionCacheHits       atomic.Uint64
	sessionCacheMisses     atomic.Uint64
	sessionsSwept          atomic.Int64
	deposits               atomic.Uint64
	depositsRejected       atomic.Uint64
	depositDurationCount   atomic.Uint64
	depositDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registrations:          m.registrations.Load(),
		RegistrationDuplicates: m.registrationDuplicates.Load(),
		RegistrationFailures:   m.registrationFailures.Load(),
		Logins:                 m.logins.Load(),
		LoginFailures:          m.loginFailures.Load(),
		Logouts:                m.logouts.Load(),
		SessionCacheHits:       m.sessionCacheHits.Load(),
		SessionCacheMisses:     m.sessionCacheMisses.Load(),
		SessionsSwept:          m.sessionsSwept.Load(),
		Deposits:               m.deposits.Load(),
		DepositsRejected:       m.depositsRejected.Load(),
		DepositDurationCount:   m.depositDurationCount.Load(),
		DepositDurationTotalNs: m.depositDurationTotalNs.Load(),
	}
}

// IncRegistration counts a registration attempt by outcome.
func (m *InMemoryRecorder) IncRegistration(status string) {
	switch status {
	case "success":
		m.registrations.Add(1)
	case "duplicate":
		m.registrationDuplicates.Add(1)
	default:
		m.registrationFailures.Add(1)
	}
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		m.logins.Add(1)
		return
	}
	m.loginFailures.Add(1)
}

// IncLogout increments the logout counter.
func (m *InMemoryRecorder) IncLogout() {
	m.logouts.Add(1)
}

// IncSessionCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncSessionCacheHit() {
	m.sessionCacheHits.Add(1)
}

// IncSessionCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncSessionCacheMiss() {
	m.sessionCacheMisses.Add(1)
}

// AddSessionsSwept adds n removed sessions.
func (m *InMemoryRecorder) AddSessionsSwept(n int64) {
	m.sessionsSwept.Add(n)
}

// IncDeposit counts a deposit by outcome.
func (m *InMemoryRecorder) IncDeposit(status string) {
	if status == "success" {
		m.deposits.Add(1)
		return
	}
	m.depositsRejected.Add(1)
}

// ObserveDepositDuration records deposit duration.
func (m *InMemoryRecorder) ObserveDepositDuration(duration time.Duration) {
	m.depositDurationCount.Add(1)
	m.depositDurationTotalNs.Add(duration.Nanoseconds())
}
