package reconcile

import "time"

// DefaultTTL is how long an unpaid draft stays usable after it was saved.
const DefaultTTL = 3 * time.Hour

// Age returns how long ago the draft was saved, clamped to zero when now
// precedes savedAt (backward clock jump or malformed timestamp); a draft
// never expires retroactively.
func Age(savedAt, now time.Time) time.Duration {
	elapsed := now.Sub(savedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// IsExpired reports whether a draft saved at savedAt is past its TTL at now.
// Boundary equality counts as expired, so the draft is unusable from the
// exact instant the window closes.
func IsExpired(savedAt, now time.Time, ttl time.Duration) bool {
	return Age(savedAt, now) >= ttl
}
