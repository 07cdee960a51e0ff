// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"encoding/binary"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// imageSize is the on-disk bank image: 64 registers, 2 bytes each,
// big-endian per slot.
const imageSize = modbus.BankSize * 2

// Storage persists the register bank image so a session can resume
// the previous bank contents.
type Storage interface {
	// Load reads the persisted image. A missing or empty backing
	// store yields a zero image, not an error.
	Load() ([modbus.BankSize]uint16, error)

	// Save writes the current image.
	Save(slots [modbus.BankSize]uint16) error

	// Close releases the backing store.
	Close() error
}

func encodeImage(slots [modbus.BankSize]uint16, dst []byte) {
	for i, v := range slots {
		binary.BigEndian.PutUint16(dst[i*2:], v)
	}
}

func decodeImage(src []byte) (slots [modbus.BankSize]uint16) {
	for i := range slots {
		slots[i] = binary.BigEndian.Uint16(src[i*2:])
	}
	return slots
}
