package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"mindline/internal/observability"
)

// JanitorConfig bounds the store: absolute TTL, inactivity limit, capacity
// ceiling, and how often the sweep runs.
type JanitorConfig struct {
	TTL             time.Duration
	InactivityLimit time.Duration
	MaxSessions     int
	Interval        time.Duration
}

// Janitor periodically removes expired sessions and enforces the capacity
// ceiling. It never reports errors upward; a failing entry is logged and the
// sweep moves on, so the next tick always happens.
type Janitor struct {
	store    *Store
	cfg      JanitorConfig
	cron     *cron.Cron
	now      func() time.Time
	policyFn func(Session, time.Time) (bool, ExpiryReason)
	running  bool
}

// NewJanitor creates a janitor for the given store, filling zero config
// fields with the defaults.
func NewJanitor(store *Store, cfg JanitorConfig) *Janitor {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.InactivityLimit == 0 {
		cfg.InactivityLimit = DefaultInactivityLimit
	}
	if cfg.MaxSessions == 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultSweepInterval
	}

	j := &Janitor{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	j.policyFn = func(sess Session, now time.Time) (bool, ExpiryReason) {
		return Expired(sess, now, j.cfg.TTL, j.cfg.InactivityLimit)
	}
	return j
}

// Start schedules the recurring sweep.
func (j *Janitor) Start() error {
	if j.running {
		return fmt.Errorf("janitor is already running")
	}

	j.cron = cron.New()
	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.cfg.Interval), j.Sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	j.cron.Start()
	j.running = true

	log.Info().
		Dur("interval", j.cfg.Interval).
		Dur("ttl", j.cfg.TTL).
		Dur("inactivity_limit", j.cfg.InactivityLimit).
		Int("max_sessions", j.cfg.MaxSessions).
		Msg("Session janitor started")

	return nil
}

// Stop cancels the schedule and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() error {
	if !j.running {
		return fmt.Errorf("janitor is not running")
	}

	<-j.cron.Stop().Done()
	j.running = false

	log.Info().Msg("Session janitor stopped")
	return nil
}

// IsRunning returns whether the janitor is scheduled.
func (j *Janitor) IsRunning() bool {
	return j.running
}

// Sweep executes one expiry-and-eviction pass. All entries are judged
// against a single timestamp so sessions evaluated late in the pass are not
// penalized.
func (j *Janitor) Sweep() {
	start := time.Now()
	now := j.now()

	removed := 0
	for _, sess := range j.store.Snapshot() {
		expired, reason := j.evaluate(sess, now)
		if !expired {
			continue
		}
		j.store.Delete(sess.ID)
		removed++
		observability.RecordSessionRemoved(string(reason))
		log.Info().
			Str("session_id", sess.ID).
			Str("reason", string(reason)).
			Msg("Cleaned up expired session")
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Cleaned up expired sessions")
	}

	if j.store.Len() > j.cfg.MaxSessions {
		evicted := SelectCapacityEvictions(j.store.Snapshot(), j.cfg.MaxSessions)
		for _, id := range evicted {
			j.store.Delete(id)
			observability.RecordSessionRemoved(string(ReasonCapacity))
		}
		log.Warn().
			Int("removed", len(evicted)).
			Int("max_sessions", j.cfg.MaxSessions).
			Msg("Evicted least-recently-active sessions to maintain limit")
	}

	observability.RecordSweep(time.Since(start))
}

// evaluate applies the expiry policy to one session, isolating failures so
// a single bad entry cannot abort the whole sweep.
func (j *Janitor) evaluate(sess Session, now time.Time) (expired bool, reason ExpiryReason) {
	defer func() {
		if r := recover(); r != nil {
			expired = false
			observability.RecordSweepError()
			log.Error().
				Str("session_id", sess.ID).
				Interface("panic", r).
				Msg("Error during session cleanup, skipping entry")
		}
	}()
	return j.policyFn(sess, now)
}
