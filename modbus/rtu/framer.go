// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

var ErrRequestTimedOut = errors.New("modbus: request timed out")

const (
	stateSlaveID = 1 << iota
	stateFunctionCode
	stateReadLength
	stateReadPayload
	stateCRC
)

type InvalidLengthError struct {
	Length byte
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid length received: %d", e.Length)
}

// CalculateResponseLength returns the expected length of the response
// ADU for a request built by this tool.
func CalculateResponseLength(adu []byte) int {
	length := MinSize
	switch adu[1] {
	case modbus.FuncCodeReadCoils:
		count := int(binary.BigEndian.Uint16(adu[4:]))
		length += 1 + count/8
		if count%8 != 0 {
			length++
		}
	case modbus.FuncCodeReadHoldingRegisters,
		modbus.FuncCodeReadInputRegisters:
		count := int(binary.BigEndian.Uint16(adu[4:]))
		length += 1 + count*2
	case modbus.FuncCodeWriteSingleRegister,
		modbus.FuncCodeWriteMultipleCoils,
		modbus.FuncCodeWriteMultipleRegister:
		length += 4
	default:
	}
	return length
}

// ReadResponse reads an RTU frame incrementally from the reader.
// It uses a state machine keyed on the expected SlaveID and
// FunctionCode, so noise before the frame start is discarded.
func ReadResponse(slaveID, functionCode byte, r io.Reader, deadline time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}

	buf := make([]byte, 1)
	data := make([]byte, MaxSize)

	state := stateSlaveID
	var length, toRead byte
	var n, crcCount int

	for {
		if time.Now().After(deadline) {
			return nil, ErrRequestTimedOut
		}

		if _, err := io.ReadAtLeast(r, buf, 1); err != nil {
			return nil, err
		}

		switch state {
		case stateSlaveID:
			if buf[0] == slaveID {
				state = stateFunctionCode
				data[n] = buf[0]
				n++
				continue
			}
		case stateFunctionCode:
			if buf[0] == functionCode {
				switch functionCode {
				case modbus.FuncCodeReadCoils,
					modbus.FuncCodeReadHoldingRegisters,
					modbus.FuncCodeReadInputRegisters:

					state = stateReadLength
				case modbus.FuncCodeWriteSingleRegister,
					modbus.FuncCodeWriteMultipleCoils,
					modbus.FuncCodeWriteMultipleRegister:

					state = stateReadPayload
					toRead = 4
				default:
					return nil, fmt.Errorf("functioncode not handled: %d", functionCode)
				}
				data[n] = buf[0]
				n++
				continue
			} else if buf[0] == functionCode|ExceptionFlag {
				state = stateReadPayload
				data[n] = buf[0]
				n++
				toRead = 1
			}
		case stateReadLength:
			length = buf[0]
			if length > MaxSize-5 || length == 0 {
				return nil, &InvalidLengthError{Length: length}
			}
			toRead = length
			data[n] = length
			n++
			state = stateReadPayload
		case stateReadPayload:
			data[n] = buf[0]
			toRead--
			n++
			if toRead == 0 {
				state = stateCRC
			}
		case stateCRC:
			data[n] = buf[0]
			crcCount++
			n++
			if crcCount == 2 {
				return data[:n], nil
			}
		}
	}
}
