// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"errors"
	"fmt"
)

// ErrFrameTooShort is returned by the raw composer when fewer than two
// byte tokens are supplied (slave id + function code).
var ErrFrameTooShort = errors.New("modbus: command too short, minimum 2 bytes required (slave id + function code)")

// InvalidInputError reports a malformed value or range caught before
// any transmission. Address is the offending slot, or -1 when the
// error is not tied to a specific slot.
type InvalidInputError struct {
	Address int
	Reason  string
}

func (e *InvalidInputError) Error() string {
	if e.Address < 0 {
		return fmt.Sprintf("modbus: invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("modbus: invalid input at address %d: %s", e.Address, e.Reason)
}

// OutOfRangeError reports a field whose value falls outside its
// permitted range.
type OutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("modbus: %s %d out of range [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// MalformedByteError reports a raw-frame token that is not exactly two
// hex digits.
type MalformedByteError struct {
	Token string
}

func (e *MalformedByteError) Error() string {
	return fmt.Sprintf("modbus: invalid hex byte %q, each byte must be 2 hex digits", e.Token)
}

// TransportError wraps a failure of the serial collaborator: connect
// failure, timeout, or a device exception response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("modbus transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExceptionError is a device exception response (function | 0x80).
type ExceptionError struct {
	FunctionCode  byte
	ExceptionCode byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus: exception 0x%02X for function 0x%02X", e.ExceptionCode, e.FunctionCode)
}

// PersistenceError reports a non-fatal settings, snapshot or export
// I/O failure. Callers log it as a warning and continue.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("modbus: persistence failure on %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
