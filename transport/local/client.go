// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package local provides an in-memory slave device behind the
// Transport interface. It backs dry-run mode and end-to-end tests
// where no serial device is available.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/JackLamWC/mb-rtu-master/modbus"
	"github.com/JackLamWC/mb-rtu-master/modbus/rtu"
)

// Client emulates one slave with the same 64-slot geometry as the
// register bank.
type Client struct {
	// UnitID is the emulated slave address. Requests for any other
	// unit fail the way a silent bus would, with a timeout error.
	UnitID byte

	mu        sync.RWMutex
	holding   [modbus.BankSize]uint16
	inputs    [modbus.BankSize]uint16
	coils     [modbus.BankSize]bool
	connected bool
}

// NewClient creates a zeroed emulated slave.
func NewClient(unitID byte) *Client {
	return &Client{UnitID: unitID}
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *Client) check(address, quantity uint16, unitID byte) error {
	if !c.connected {
		return &modbus.TransportError{Op: "local", Err: fmt.Errorf("not connected")}
	}
	if unitID != c.UnitID {
		return &modbus.TransportError{Op: "local", Err: rtu.ErrRequestTimedOut}
	}
	if quantity < 1 || int(address)+int(quantity) > modbus.BankSize {
		return &modbus.TransportError{Op: "local", Err: &modbus.ExceptionError{
			ExceptionCode: modbus.ExceptionCodeIllegalDataAddress,
		}}
	}
	return nil
}

func (c *Client) ReadHoldingRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error) {
	if err := c.check(address, quantity, unitID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]uint16, quantity)
	copy(out, c.holding[address:int(address)+int(quantity)])
	return out, nil
}

func (c *Client) ReadInputRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error) {
	if err := c.check(address, quantity, unitID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]uint16, quantity)
	copy(out, c.inputs[address:int(address)+int(quantity)])
	return out, nil
}

func (c *Client) ReadCoils(ctx context.Context, address, quantity uint16, unitID byte) ([]bool, error) {
	if err := c.check(address, quantity, unitID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]bool, quantity)
	copy(out, c.coils[address:int(address)+int(quantity)])
	return out, nil
}

func (c *Client) WriteRegister(ctx context.Context, address, value uint16, unitID byte) error {
	if err := c.check(address, 1, unitID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holding[address] = value
	return nil
}

func (c *Client) WriteRegisters(ctx context.Context, address uint16, values []uint16, unitID byte) error {
	if err := c.check(address, uint16(len(values)), unitID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.holding[address:], values)
	return nil
}

func (c *Client) WriteCoils(ctx context.Context, address uint16, values []bool, unitID byte) error {
	if err := c.check(address, uint16(len(values)), unitID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.coils[address:], values)
	return nil
}

// SendRaw accepts any well-formed frame and discards it, mirroring
// the raw path's fire-and-forget contract.
func (c *Client) SendRaw(ctx context.Context, frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return &modbus.TransportError{Op: "local raw", Err: fmt.Errorf("not connected")}
	}
	if len(frame) < rtu.MinSize {
		return &modbus.TransportError{Op: "local raw", Err: fmt.Errorf("frame shorter than minimum ADU")}
	}
	return nil
}

// SetInputRegisters seeds the read-only input table for demos and
// tests.
func (c *Client) SetInputRegisters(address uint16, values []uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.inputs[address:], values)
}
