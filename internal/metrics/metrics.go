// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Login outcomes reported to IncLogin.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Registry metrics
	IncUserCreated()
	IncUserUpdated()

	// Authentication metrics
	IncLogin(status string) // status: "success" or "failure"

	// Token metrics
	IncTokenIssued()
	IncTokenRevoked()
	IncTokenCacheHit()
	IncTokenCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
