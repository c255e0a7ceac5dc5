package session

import (
	"sort"
	"time"
)

// Expiry defaults, overridable through configuration.
const (
	DefaultTTL             = 24 * time.Hour
	DefaultInactivityLimit = 30 * time.Minute
	DefaultMaxSessions     = 1000
	DefaultSweepInterval   = 5 * time.Minute
)

// ExpiryReason classifies why a session was removed.
type ExpiryReason string

const (
	ReasonTTL        ExpiryReason = "ttl"
	ReasonInactivity ExpiryReason = "inactivity"
	ReasonCapacity   ExpiryReason = "capacity"
)

// TTLExpired reports whether the session has outlived its absolute TTL.
func TTLExpired(sess Session, now time.Time, ttl time.Duration) bool {
	return now.Sub(sess.CreatedAt) > ttl
}

// Inactive reports whether the session has been idle past the limit.
func Inactive(sess Session, now time.Time, limit time.Duration) bool {
	return now.Sub(sess.LastActivity) > limit
}

// Expired applies both expiry rules. TTL wins the reason when both hold.
func Expired(sess Session, now time.Time, ttl, limit time.Duration) (bool, ExpiryReason) {
	if TTLExpired(sess, now, ttl) {
		return true, ReasonTTL
	}
	if Inactive(sess, now, limit) {
		return true, ReasonInactivity
	}
	return false, ""
}

// SelectCapacityEvictions picks the ids to remove when the store holds more
// than maxSessions entries. Sessions are ranked by last_activity, most
// recent first; the overflow is taken from the least-recently-active end.
// Equal last_activity ties are broken by ascending id for determinism.
func SelectCapacityEvictions(sessions []Session, maxSessions int) []string {
	if maxSessions <= 0 || len(sessions) <= maxSessions {
		return nil
	}

	ranked := make([]Session, len(sessions))
	copy(ranked, sessions)
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].LastActivity.Equal(ranked[j].LastActivity) {
			return ranked[i].LastActivity.After(ranked[j].LastActivity)
		}
		return ranked[i].ID < ranked[j].ID
	})

	evict := make([]string, 0, len(ranked)-maxSessions)
	for _, sess := range ranked[maxSessions:] {
		evict = append(evict, sess.ID)
	}
	return evict
}
