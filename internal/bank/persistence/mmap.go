// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// MmapStorage persists the bank image through a memory-mapped file.
// Saves touch the mapped region and flush, so the OS owns durability.
type MmapStorage struct {
	path string
	file *os.File
	data mmap.MMap
}

// NewMmapStorage creates a new MmapStorage.
func NewMmapStorage(path string) *MmapStorage {
	return &MmapStorage{path: path}
}

// Load maps the image file, creating and sizing it if necessary.
func (ms *MmapStorage) Load() ([modbus.BankSize]uint16, error) {
	var zero [modbus.BankSize]uint16

	f, err := os.OpenFile(ms.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return zero, &modbus.PersistenceError{Path: ms.path, Err: err}
	}
	ms.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		ms.file = nil
		return zero, &modbus.PersistenceError{Path: ms.path, Err: err}
	}

	fresh := fi.Size() != int64(imageSize)
	if fresh {
		if err := f.Truncate(int64(imageSize)); err != nil {
			f.Close()
			ms.file = nil
			return zero, &modbus.PersistenceError{Path: ms.path, Err: fmt.Errorf("failed to resize image: %w", err)}
		}
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		ms.file = nil
		return zero, &modbus.PersistenceError{Path: ms.path, Err: fmt.Errorf("mmap failed: %w", err)}
	}
	ms.data = data

	if fresh {
		return zero, nil
	}
	return decodeImage(data), nil
}

// Save copies the image into the mapped region and flushes.
func (ms *MmapStorage) Save(slots [modbus.BankSize]uint16) error {
	if ms.data == nil {
		return &modbus.PersistenceError{Path: ms.path, Err: fmt.Errorf("storage not loaded")}
	}

	encodeImage(slots, ms.data)

	if err := ms.data.Flush(); err != nil {
		return &modbus.PersistenceError{Path: ms.path, Err: err}
	}
	return nil
}

// Close unmaps and closes the file.
func (ms *MmapStorage) Close() error {
	var err error
	if ms.data != nil {
		if e := ms.data.Unmap(); e != nil {
			err = e
		}
		ms.data = nil
	}
	if ms.file != nil {
		if e := ms.file.Close(); e != nil {
			err = e
		}
		ms.file = nil
	}
	return err
}
