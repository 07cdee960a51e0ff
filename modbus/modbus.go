// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import "fmt"

// Function Codes supported by the frame builder.
const (
	FuncCodeReadCoils             = 0x01
	FuncCodeReadHoldingRegisters  = 0x03
	FuncCodeReadInputRegisters    = 0x04
	FuncCodeWriteSingleRegister   = 0x06
	FuncCodeWriteMultipleCoils    = 0x0F
	FuncCodeWriteMultipleRegister = 0x10
)

// Exception Codes a slave may answer with (function code | 0x80).
const (
	ExceptionCodeIllegalFunction     = 0x01
	ExceptionCodeIllegalDataAddress  = 0x02
	ExceptionCodeIllegalDataValue    = 0x03
	ExceptionCodeServerDeviceFailure = 0x04
)

// Addressing limits of the register bank exposed by this tool.
const (
	// BankSize is the number of addressable slots (registers or coils).
	BankSize = 64

	// SlaveIDMin and SlaveIDMax bound slave IDs on every path,
	// including raw frames. Broadcast (0) is not supported.
	SlaveIDMin = 1
	SlaveIDMax = 247
)

// ProtocolDataUnit is the function code plus its payload, excluding
// slave ID and CRC.
type ProtocolDataUnit struct {
	FunctionCode byte
	Data         []byte
}

// Command identifies one of the six supported request types.
type Command int

const (
	ReadHoldingRegisters Command = iota
	ReadInputRegisters
	ReadCoils
	WriteSingleRegister
	WriteHoldingRegisters
	WriteCoils
)

var commandNames = map[Command]string{
	ReadHoldingRegisters:  "Read Holding Registers",
	ReadInputRegisters:    "Read Input Registers",
	ReadCoils:             "Read Coils",
	WriteSingleRegister:   "Write Single Register",
	WriteHoldingRegisters: "Write Holding Registers",
	WriteCoils:            "Write Coils",
}

var commandCodes = map[Command]byte{
	ReadHoldingRegisters:  FuncCodeReadHoldingRegisters,
	ReadInputRegisters:    FuncCodeReadInputRegisters,
	ReadCoils:             FuncCodeReadCoils,
	WriteSingleRegister:   FuncCodeWriteSingleRegister,
	WriteHoldingRegisters: FuncCodeWriteMultipleRegister,
	WriteCoils:            FuncCodeWriteMultipleCoils,
}

// String returns the operator-facing command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// FunctionCode returns the wire function code of the command.
func (c Command) FunctionCode() byte {
	return commandCodes[c]
}

// IsRead reports whether the command reads from the slave.
func (c Command) IsRead() bool {
	switch c {
	case ReadHoldingRegisters, ReadInputRegisters, ReadCoils:
		return true
	}
	return false
}

// ParseCommand resolves an operator-facing command name.
func ParseCommand(name string) (Command, error) {
	for cmd, n := range commandNames {
		if n == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("modbus: unknown command %q", name)
}
