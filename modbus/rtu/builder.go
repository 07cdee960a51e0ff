// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/JackLamWC/mb-rtu-master/modbus"
	"github.com/JackLamWC/mb-rtu-master/modbus/crc"
)

// Request describes one protocol-addressed command against the
// register bank window.
type Request struct {
	SlaveID  byte
	Command  modbus.Command
	Address  int
	Quantity int

	// Registers carries the values for write-register variants.
	// For Write Single Register only Registers[0] is used.
	Registers []uint16

	// Coils carries the values for Write Coils.
	Coils []bool
}

// BuildFrame encodes a request into its pre-CRC byte sequence:
//
//	Slave Address   : 1 byte
//	Function        : 1 byte
//	Start Address   : 2 bytes big-endian
//	Quantity/Value  : 2 bytes big-endian
//	Byte Count+Data : write-multiple variants only
//
// All validation happens here, before anything touches the transport.
func BuildFrame(req Request) ([]byte, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 7+2*req.Quantity)
	frame = append(frame, req.SlaveID, req.Command.FunctionCode())
	frame = binary.BigEndian.AppendUint16(frame, uint16(req.Address))

	switch req.Command {
	case modbus.ReadHoldingRegisters, modbus.ReadInputRegisters, modbus.ReadCoils:
		frame = binary.BigEndian.AppendUint16(frame, uint16(req.Quantity))

	case modbus.WriteSingleRegister:
		// No quantity field; the value takes its place.
		frame = binary.BigEndian.AppendUint16(frame, req.Registers[0])

	case modbus.WriteHoldingRegisters:
		frame = binary.BigEndian.AppendUint16(frame, uint16(req.Quantity))
		frame = append(frame, byte(req.Quantity*2))
		for _, v := range req.Registers {
			frame = binary.BigEndian.AppendUint16(frame, v)
		}

	case modbus.WriteCoils:
		frame = binary.BigEndian.AppendUint16(frame, uint16(req.Quantity))
		frame = append(frame, byte((req.Quantity+7)/8))
		frame = append(frame, packCoils(req.Coils)...)
	}

	return frame, nil
}

// EncodeFrame builds the complete wire frame including the CRC.
func EncodeFrame(req Request) ([]byte, error) {
	frame, err := BuildFrame(req)
	if err != nil {
		return nil, err
	}
	return AppendCRC(frame), nil
}

// AppendCRC appends the Modbus CRC16 in wire order (low byte first).
func AppendCRC(frame []byte) []byte {
	return binary.BigEndian.AppendUint16(frame, crc.Checksum(frame))
}

func validate(req Request) error {
	if req.SlaveID < modbus.SlaveIDMin || req.SlaveID > modbus.SlaveIDMax {
		return &modbus.OutOfRangeError{Field: "slave id", Value: int(req.SlaveID), Min: modbus.SlaveIDMin, Max: modbus.SlaveIDMax}
	}
	if req.Address < 0 || req.Address > modbus.BankSize-1 {
		return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("start address must be between 0 and %d", modbus.BankSize-1)}
	}
	if req.Quantity < 1 || req.Quantity > modbus.BankSize {
		return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("length %d must be between 1 and %d", req.Quantity, modbus.BankSize)}
	}
	if req.Address+req.Quantity > modbus.BankSize {
		return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("range %d+%d exceeds register limit %d", req.Address, req.Quantity, modbus.BankSize)}
	}

	switch req.Command {
	case modbus.WriteSingleRegister:
		if req.Quantity != 1 {
			return &modbus.InvalidInputError{Address: req.Address, Reason: "single register write requires length 1"}
		}
		if len(req.Registers) != 1 {
			return &modbus.InvalidInputError{Address: req.Address, Reason: "single register write requires exactly one value"}
		}
	case modbus.WriteHoldingRegisters:
		if len(req.Registers) != req.Quantity {
			return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("expected %d register values, got %d", req.Quantity, len(req.Registers))}
		}
	case modbus.WriteCoils:
		if len(req.Coils) != req.Quantity {
			return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("expected %d coil values, got %d", req.Quantity, len(req.Coils))}
		}
	case modbus.ReadHoldingRegisters, modbus.ReadInputRegisters, modbus.ReadCoils:
	default:
		return &modbus.InvalidInputError{Address: req.Address, Reason: fmt.Sprintf("unsupported command %v", req.Command)}
	}
	return nil
}

// packCoils packs coil booleans LSB-first into bytes. Unused high bits
// of the final byte stay zero.
func packCoils(coils []bool) []byte {
	packed := make([]byte, (len(coils)+7)/8)
	for i, on := range coils {
		if on {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return packed
}

// FormatFrame renders a frame as space-separated uppercase hex bytes,
// the form used for log lines and raw-command echo.
func FormatFrame(frame []byte) string {
	var sb strings.Builder
	for i, b := range frame {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// DescribeFrame renders a complete frame (CRC already appended) with
// the trailing CRC bytes called out, matching the operator log format.
func DescribeFrame(frame []byte) string {
	if len(frame) < 2 {
		return FormatFrame(frame)
	}
	return fmt.Sprintf("%s (CRC: %02X %02X)", FormatFrame(frame), frame[len(frame)-2], frame[len(frame)-1])
}
