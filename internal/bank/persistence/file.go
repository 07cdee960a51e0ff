// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"os"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// FileStorage persists the bank image with plain file operations.
type FileStorage struct {
	path string
	file *os.File
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load opens (creating if necessary) and reads the image file.
func (fs *FileStorage) Load() ([modbus.BankSize]uint16, error) {
	var zero [modbus.BankSize]uint16

	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return zero, &modbus.PersistenceError{Path: fs.path, Err: err}
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		fs.file = nil
		return zero, &modbus.PersistenceError{Path: fs.path, Err: err}
	}

	if fi.Size() != int64(imageSize) {
		// Fresh or truncated image: resize and start from zero.
		if err := f.Truncate(int64(imageSize)); err != nil {
			f.Close()
			fs.file = nil
			return zero, &modbus.PersistenceError{Path: fs.path, Err: fmt.Errorf("failed to resize image: %w", err)}
		}
		return zero, nil
	}

	buf := make([]byte, imageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		fs.file = nil
		return zero, &modbus.PersistenceError{Path: fs.path, Err: err}
	}
	return decodeImage(buf), nil
}

// Save writes the image and syncs it to disk.
func (fs *FileStorage) Save(slots [modbus.BankSize]uint16) error {
	if fs.file == nil {
		return &modbus.PersistenceError{Path: fs.path, Err: fmt.Errorf("storage not loaded")}
	}

	buf := make([]byte, imageSize)
	encodeImage(slots, buf)

	if _, err := fs.file.WriteAt(buf, 0); err != nil {
		return &modbus.PersistenceError{Path: fs.path, Err: err}
	}
	if err := fs.file.Sync(); err != nil {
		return &modbus.PersistenceError{Path: fs.path, Err: err}
	}
	return nil
}

// Close closes the image file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
