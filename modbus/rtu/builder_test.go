// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

func TestBuildFrameLayouts(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []byte
	}{
		{
			"ReadHoldingRegisters",
			Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 0, Quantity: 1},
			[]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01},
		},
		{
			"ReadInputRegisters",
			Request{SlaveID: 2, Command: modbus.ReadInputRegisters, Address: 10, Quantity: 4},
			[]byte{0x02, 0x04, 0x00, 0x0A, 0x00, 0x04},
		},
		{
			"ReadCoils",
			Request{SlaveID: 1, Command: modbus.ReadCoils, Address: 8, Quantity: 16},
			[]byte{0x01, 0x01, 0x00, 0x08, 0x00, 0x10},
		},
		{
			"WriteSingleRegister",
			Request{SlaveID: 1, Command: modbus.WriteSingleRegister, Address: 5, Quantity: 1, Registers: []uint16{0x00FF}},
			[]byte{0x01, 0x06, 0x00, 0x05, 0x00, 0xFF},
		},
		{
			"WriteHoldingRegisters",
			Request{SlaveID: 1, Command: modbus.WriteHoldingRegisters, Address: 1, Quantity: 2, Registers: []uint16{0x1234, 0xABCD}},
			[]byte{0x01, 0x10, 0x00, 0x01, 0x00, 0x02, 0x04, 0x12, 0x34, 0xAB, 0xCD},
		},
		{
			"WriteCoils",
			Request{SlaveID: 1, Command: modbus.WriteCoils, Address: 0, Quantity: 8,
				Coils: []bool{true, false, true, true, false, false, false, false}},
			[]byte{0x01, 0x0F, 0x00, 0x00, 0x00, 0x08, 0x01, 0x0D},
		},
		{
			"WriteCoilsPartialByte",
			Request{SlaveID: 1, Command: modbus.WriteCoils, Address: 3, Quantity: 10,
				Coils: []bool{true, true, false, false, false, false, false, false, true, false}},
			[]byte{0x01, 0x0F, 0x00, 0x03, 0x00, 0x0A, 0x02, 0x03, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildFrame(tt.req)
			if err != nil {
				t.Fatalf("BuildFrame() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("BuildFrame() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestBuildFrameSizes(t *testing.T) {
	// Reads are always 6 bytes pre-CRC; write-multiple grows with length.
	for addr := 0; addr < modbus.BankSize; addr++ {
		for length := 1; addr+length <= modbus.BankSize; length++ {
			read, err := BuildFrame(Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: addr, Quantity: length})
			if err != nil {
				t.Fatalf("read addr=%d len=%d: %v", addr, length, err)
			}
			if len(read) != 6 {
				t.Fatalf("read frame size = %d, want 6", len(read))
			}

			write, err := BuildFrame(Request{
				SlaveID: 1, Command: modbus.WriteHoldingRegisters,
				Address: addr, Quantity: length, Registers: make([]uint16, length),
			})
			if err != nil {
				t.Fatalf("write addr=%d len=%d: %v", addr, length, err)
			}
			if want := 7 + 2*length; len(write) != want {
				t.Fatalf("write frame size = %d, want %d", len(write), want)
			}
		}
	}
}

func TestBuildFrameValidation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"SlaveIDZero", Request{SlaveID: 0, Command: modbus.ReadHoldingRegisters, Address: 0, Quantity: 1}},
		{"AddressTooHigh", Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 64, Quantity: 1}},
		{"LengthZero", Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 0, Quantity: 0}},
		{"LengthTooLarge", Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 0, Quantity: 65}},
		{"RangeOverflow", Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 60, Quantity: 5}},
		{"WriteValueCountMismatch", Request{SlaveID: 1, Command: modbus.WriteHoldingRegisters, Address: 0, Quantity: 2, Registers: []uint16{1}}},
		{"WriteCoilCountMismatch", Request{SlaveID: 1, Command: modbus.WriteCoils, Address: 0, Quantity: 3, Coils: []bool{true}}},
		{"WriteSingleMultiValue", Request{SlaveID: 1, Command: modbus.WriteSingleRegister, Address: 0, Quantity: 2, Registers: []uint16{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildFrame(tt.req); err == nil {
				t.Errorf("BuildFrame() expected error, got none")
			}
		})
	}
}

func TestEncodeFrameCanonical(t *testing.T) {
	frame, err := EncodeFrame(Request{SlaveID: 1, Command: modbus.ReadHoldingRegisters, Address: 0, Quantity: 1})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	want := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}
	if !bytes.Equal(frame, want) {
		t.Errorf("EncodeFrame() = % X, want % X", frame, want)
	}
	if got := DescribeFrame(frame); got != "01 03 00 00 00 01 84 0A (CRC: 84 0A)" {
		t.Errorf("DescribeFrame() = %q", got)
	}
}

func TestBuildFrameInvalidInputType(t *testing.T) {
	_, err := BuildFrame(Request{SlaveID: 1, Command: modbus.WriteHoldingRegisters, Address: 60, Quantity: 5, Registers: make([]uint16, 5)})
	var inv *modbus.InvalidInputError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if inv.Address != 60 {
		t.Errorf("error address = %d, want 60", inv.Address)
	}
}
