// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/JackLamWC/mb-rtu-master/modbus"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() ([modbus.BankSize]uint16, error) {
	return [modbus.BankSize]uint16{}, nil
}

func (ms *MemoryStorage) Save(slots [modbus.BankSize]uint16) error {
	return nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
