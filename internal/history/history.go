// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package history keeps the append-only record of executed commands.
package history

import (
	"sync"
	"time"
)

// Entry is one executed command. For register commands Address, Count
// and Values are set; the raw path records RawBytes instead.
type Entry struct {
	Timestamp      time.Time `json:"timestamp"`
	Command        string    `json:"command"`
	Address        int       `json:"address"`
	Count          int       `json:"count"`
	Values         []uint16  `json:"values,omitempty"`
	RawBytes       string    `json:"raw_bytes,omitempty"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	Success        bool      `json:"success"`
}

// Log is an append-only ordered sequence of entries. Ordering is
// execution order; entries are never mutated or removed except by an
// explicit Clear.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty log.
func New() *Log {
	return &Log{}
}

// Append records one entry.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the log in execution order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of recorded entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear discards all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
