// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package bank

import (
	"fmt"
	"sync"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// Bank is the fixed-size addressable store behind the register
// monitor: 64 slots of 16-bit values. Coil mode is a view over the
// same slots, reinterpreted as 0/1.
//
// All command traffic is serialized through the dispatcher, but the
// snapshot hook may observe the bank concurrently, so access is
// guarded the same way the slave data model guards its tables.
type Bank struct {
	mu    sync.RWMutex
	slots [modbus.BankSize]uint16

	// onWrite, when set, is notified after every mutation for
	// snapshot persistence.
	onWrite func(address, quantity int)
}

// New creates a bank initialized to zero.
func New() *Bank {
	return &Bank{}
}

// OnWrite registers a hook invoked after every successful mutation.
func (b *Bank) OnWrite(hook func(address, quantity int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onWrite = hook
}

func validateRange(address, count int) error {
	if address < 0 || address > modbus.BankSize-1 {
		return &modbus.OutOfRangeError{Field: "address", Value: address, Min: 0, Max: modbus.BankSize - 1}
	}
	if count < 1 {
		return &modbus.OutOfRangeError{Field: "count", Value: count, Min: 1, Max: modbus.BankSize}
	}
	if address+count > modbus.BankSize {
		return &modbus.OutOfRangeError{Field: "address+count", Value: address + count, Min: 1, Max: modbus.BankSize}
	}
	return nil
}

// Read returns a copy of count slots starting at address.
func (b *Bank) Read(address, count int) ([]uint16, error) {
	if err := validateRange(address, count); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	values := make([]uint16, count)
	copy(values, b.slots[address:address+count])
	return values, nil
}

// Write overwrites slots starting at address. The whole range is
// validated first; readers never observe a partial write.
func (b *Bank) Write(address int, values []uint16) error {
	if err := validateRange(address, len(values)); err != nil {
		return err
	}

	b.mu.Lock()
	copy(b.slots[address:], values)
	hook := b.onWrite
	b.mu.Unlock()

	if hook != nil {
		hook(address, len(values))
	}
	return nil
}

// WriteCoils overwrites slots with 0/1 from booleans.
func (b *Bank) WriteCoils(address int, values []bool) error {
	if err := validateRange(address, len(values)); err != nil {
		return err
	}

	b.mu.Lock()
	for i, on := range values {
		if on {
			b.slots[address+i] = 1
		} else {
			b.slots[address+i] = 0
		}
	}
	hook := b.onWrite
	b.mu.Unlock()

	if hook != nil {
		hook(address, len(values))
	}
	return nil
}

// Coils reinterprets count slots starting at address as coil values
// for write staging. A slot holding anything other than 0 or 1 fails
// with the offending address named.
func (b *Bank) Coils(address, count int) ([]bool, error) {
	if err := validateRange(address, count); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	coils := make([]bool, count)
	for i := 0; i < count; i++ {
		switch b.slots[address+i] {
		case 0:
			coils[i] = false
		case 1:
			coils[i] = true
		default:
			return nil, &modbus.InvalidInputError{
				Address: address + i,
				Reason:  fmt.Sprintf("coil value 0x%04X must be 0 or 1", b.slots[address+i]),
			}
		}
	}
	return coils, nil
}

// Clear zeroes every slot.
func (b *Bank) Clear() {
	b.mu.Lock()
	for i := range b.slots {
		b.slots[i] = 0
	}
	hook := b.onWrite
	b.mu.Unlock()

	if hook != nil {
		hook(0, modbus.BankSize)
	}
}

// Text renders one slot in its canonical external form.
func (b *Bank) Text(address int) (string, error) {
	values, err := b.Read(address, 1)
	if err != nil {
		return "", err
	}
	return FormatHex(values[0]), nil
}

// Snapshot copies the full slot array.
func (b *Bank) Snapshot() [modbus.BankSize]uint16 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slots
}

// Restore replaces the full slot array, bypassing the write hook.
// Used when resuming a persisted bank image at startup.
func (b *Bank) Restore(slots [modbus.BankSize]uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots = slots
}
