// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/grid-x/serial"
)

const (
	serialIdleTimeout = 60 * time.Second
)

// serialPort has configuration and I/O controller.
type serialPort struct {
	// Serial port configuration.
	serial.Config

	IdleTimeout time.Duration

	mu sync.Mutex
	// port is platform-dependent data structure for serial port.
	port         io.ReadWriteCloser
	lastActivity time.Time
	closeTimer   *time.Timer
}

func (sp *serialPort) Connect(ctx context.Context) (err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.connect(ctx)
}

// connect opens the serial port if it is not open. Caller must hold
// the mutex.
func (sp *serialPort) connect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if sp.port == nil {
		port, err := serial.Open(&sp.Config)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", sp.Config.Address, err)
		}
		sp.port = port
	}
	return nil
}

func (sp *serialPort) Close() (err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.close()
}

// close closes the serial port if it is open. Caller must hold the
// mutex.
func (sp *serialPort) close() (err error) {
	if sp.port != nil {
		err = sp.port.Close()
		sp.port = nil
	}
	return
}

func (sp *serialPort) startCloseTimer() {
	if sp.IdleTimeout <= 0 {
		return
	}
	if sp.closeTimer == nil {
		sp.closeTimer = time.AfterFunc(sp.IdleTimeout, sp.closeIdle)
	} else {
		sp.closeTimer.Reset(sp.IdleTimeout)
	}
}

// closeIdle closes the connection once last activity falls behind
// IdleTimeout.
func (sp *serialPort) closeIdle() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.IdleTimeout <= 0 {
		return
	}

	if idle := time.Since(sp.lastActivity); idle >= sp.IdleTimeout {
		slog.Debug("closing serial connection due to idle timeout", "idle", idle)
		sp.close()
	}
}
