// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package eventlog carries operator-facing log entries from any
// component to a single sink, in strict FIFO order, without blocking
// the command-issuing path.
package eventlog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Level classifies an entry for display.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
)

// Entry is one timestamped log line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Sink consumes entries in the order they were produced.
type Sink func(Entry)

// Bus is a bounded producer/consumer queue with a single draining
// goroutine. Entries are consumed with a blocking receive, so there
// is no polling wake-up.
type Bus struct {
	ch   chan Entry
	sink Sink

	closeOnce sync.Once
	done      chan struct{}
}

const defaultQueueSize = 256

// NewBus starts the consumer goroutine. A nil sink logs through slog.
func NewBus(sink Sink) *Bus {
	if sink == nil {
		sink = SlogSink(slog.Default())
	}
	b := &Bus{
		ch:   make(chan Entry, defaultQueueSize),
		sink: sink,
		done: make(chan struct{}),
	}
	go b.drain()
	return b
}

func (b *Bus) drain() {
	defer close(b.done)
	for e := range b.ch {
		b.sink(e)
	}
}

// Post enqueues one entry. Blocks only if the queue is full.
func (b *Bus) Post(level Level, message string) {
	b.ch <- Entry{Time: time.Now(), Level: level, Message: message}
}

// Infof enqueues an INFO entry.
func (b *Bus) Infof(format string, args ...any) {
	b.Post(LevelInfo, fmt.Sprintf(format, args...))
}

// Successf enqueues a SUCCESS entry.
func (b *Bus) Successf(format string, args ...any) {
	b.Post(LevelSuccess, fmt.Sprintf(format, args...))
}

// Errorf enqueues an ERROR entry.
func (b *Bus) Errorf(format string, args ...any) {
	b.Post(LevelError, fmt.Sprintf(format, args...))
}

// Warnf enqueues a WARNING entry.
func (b *Bus) Warnf(format string, args ...any) {
	b.Post(LevelWarning, fmt.Sprintf(format, args...))
}

// Close stops accepting entries and waits for the queue to drain.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.ch)
	})
	<-b.done
}

// SlogSink forwards entries to a slog logger. SUCCESS maps to Info
// with a status attribute so the level survives the translation.
func SlogSink(logger *slog.Logger) Sink {
	return func(e Entry) {
		switch e.Level {
		case LevelError:
			logger.Error(e.Message)
		case LevelWarning:
			logger.Warn(e.Message)
		case LevelSuccess:
			logger.Info(e.Message, "status", "success")
		default:
			logger.Info(e.Message)
		}
	}
}
