// Package conversation holds the session-scoped, append-only log of
// conversation turns. The log is the only shared mutable state in the
// pipeline: a single session goroutine writes, the display surface reads
// snapshots. There is deliberately no persistence — the log dies with the
// process.
package conversation

import (
	"sync"

	"github.com/hupe1980/ragmesh/core"
)

// Log is an ordered, append-only collection of turns. No deletion or
// reordering operation is exposed. Safe for concurrent access under a
// single-writer/multiple-reader discipline (or any mix — it is fully
// mutex-guarded).
type Log struct {
	mu    sync.RWMutex
	turns []core.Turn
}

// NewLog constructs an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a turn to the end of the log, assigning its sequence position.
// The stored turn is immutable from that point on.
func (l *Log) Append(turn core.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	turn.Seq = len(l.turns)
	l.turns = append(l.turns, turn)
}

// Turns returns a snapshot copy of the full history in insertion order.
// Callers never observe later appends through the returned slice.
func (l *Log) Turns() []core.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make([]core.Turn, len(l.turns))
	copy(snapshot, l.turns)
	return snapshot
}

// Len reports the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Last returns the most recent turn and true, or a zero turn and false when
// the log is empty.
func (l *Log) Last() (core.Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.turns) == 0 {
		return core.Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}
