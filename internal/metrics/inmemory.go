package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated    uint64
	UsersUpdated    uint64
	LoginsSucceeded uint64
	LoginsFailed    uint64
	TokensIssued    uint64
	TokensRevoked   uint64
	TokenCacheHits  uint64
	TokenCacheMiss  uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersCreated    atomic.Uint64
	usersUpdated    atomic.Uint64
	loginsSucceeded atomic.Uint64
	loginsFailed    atomic.Uint64
	tokensIssued    atomic.Uint64
	tokensRevoked   atomic.Uint64
	tokenCacheHits  atomic.Uint64
	tokenCacheMiss  atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:    m.usersCreated.Load(),
		UsersUpdated:    m.usersUpdated.Load(),
		LoginsSucceeded: m.loginsSucceeded.Load(),
		LoginsFailed:    m.loginsFailed.Load(),
		TokensIssued:    m.tokensIssued.Load(),
		TokensRevoked:   m.tokensRevoked.Load(),
		TokenCacheHits:  m.tokenCacheHits.Load(),
		TokenCacheMiss:  m.tokenCacheMiss.Load(),
	}
}

// IncUserCreated increments the users created counter.
func (m *InMemoryRecorder) IncUserCreated() { m.usersCreated.Add(1) }

// IncUserUpdated increments the users updated counter.
func (m *InMemoryRecorder) IncUserUpdated() { m.usersUpdated.Add(1) }

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == LoginSuccess {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncTokenIssued increments the tokens issued counter.
func (m *InMemoryRecorder) IncTokenIssued() { m.tokensIssued.Add(1) }

// IncTokenRevoked increments the tokens revoked counter.
func (m *InMemoryRecorder) IncTokenRevoked() { m.tokensRevoked.Add(1) }

// IncTokenCacheHit increments the token cache hit counter.
func (m *InMemoryRecorder) IncTokenCacheHit() { m.tokenCacheHits.Add(1) }

// IncTokenCacheMiss increments the token cache miss counter.
func (m *InMemoryRecorder) IncTokenCacheMiss() { m.tokenCacheMiss.Add(1) }
