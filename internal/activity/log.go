// Package activity owns the process-wide activity log and counters. All
// mutations go through one mutex so a dashboard reader never observes
// counters inconsistent with the log.
package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// DefaultCapacity bounds the ring buffer when no capacity is configured.
const DefaultCapacity = 100

// Log is an append-only ring buffer of pipeline outcomes plus running
// counters. The buffer discards the oldest entry when full.
type Log struct {
	mu      sync.Mutex
	cap     int
	entries []model.ActivityEntry // newest first
	stats   model.Stats
}

// NewLog creates a Log with the given capacity (DefaultCapacity if <= 0).
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{cap: capacity}
}

// Record appends an entry and updates the counters as one atomic step.
// It fills in the entry's ID and timestamp when unset and returns the
// stored entry.
func (l *Log) Record(e model.ActivityEntry) model.ActivityEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]model.ActivityEntry{e}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}

	l.stats.Total++
	switch e.Outcome {
	case model.OutcomeSkipped:
		l.stats.Skipped++
	case model.OutcomeErrored:
		l.stats.Errored++
	case model.OutcomeLogged:
		switch e.Class {
		case model.ClassQualified:
			l.stats.Qualified++
		case model.ClassSpam:
			l.stats.Spam++
		default:
			// Possible leads stay with unqualified until promoted by a human.
			l.stats.Unqualified++
		}
	}

	return e
}

// RecordCRMLookup bumps the CRM counters outside the terminal accounting.
func (l *Log) RecordCRMLookup(matched bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.CRMChecked++
	if matched {
		l.stats.CRMMatched++
	}
}

// Snapshot returns the current stats and up to limit recent entries,
// newest first. limit <= 0 returns all buffered entries.
func (l *Log) Snapshot(limit int) (model.Stats, []model.ActivityEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.ActivityEntry, n)
	copy(out, l.entries[:n])
	return l.stats, out
}
