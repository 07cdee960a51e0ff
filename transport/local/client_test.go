// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"context"
	"testing"
)

func TestRegisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewClient(1)
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.WriteRegisters(ctx, 10, []uint16{0x1234, 0xABCD}, 1); err != nil {
		t.Fatalf("WriteRegisters() error = %v", err)
	}
	if err := c.WriteRegister(ctx, 12, 0x00FF, 1); err != nil {
		t.Fatalf("WriteRegister() error = %v", err)
	}

	values, err := c.ReadHoldingRegisters(ctx, 10, 3, 1)
	if err != nil {
		t.Fatalf("ReadHoldingRegisters() error = %v", err)
	}
	want := []uint16{0x1234, 0xABCD, 0x00FF}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("register %d = %04X, want %04X", 10+i, values[i], want[i])
		}
	}
}

func TestCoilRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewClient(1)
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.WriteCoils(ctx, 0, []bool{true, false, true}, 1); err != nil {
		t.Fatalf("WriteCoils() error = %v", err)
	}
	coils, err := c.ReadCoils(ctx, 0, 3, 1)
	if err != nil {
		t.Fatalf("ReadCoils() error = %v", err)
	}
	if !coils[0] || coils[1] || !coils[2] {
		t.Errorf("coils = %v", coils)
	}
}

func TestInputRegistersSeeded(t *testing.T) {
	ctx := context.Background()
	c := NewClient(1)
	c.Connect(ctx)
	defer c.Close()

	c.SetInputRegisters(5, []uint16{42})
	values, err := c.ReadInputRegisters(ctx, 5, 1, 1)
	if err != nil {
		t.Fatalf("ReadInputRegisters() error = %v", err)
	}
	if values[0] != 42 {
		t.Errorf("input register = %d, want 42", values[0])
	}
}

func TestFailureModes(t *testing.T) {
	ctx := context.Background()
	c := NewClient(1)

	// Not connected.
	if _, err := c.ReadHoldingRegisters(ctx, 0, 1, 1); err == nil {
		t.Error("expected error before Connect")
	}

	c.Connect(ctx)
	defer c.Close()

	// Wrong unit id behaves like a silent bus.
	if _, err := c.ReadHoldingRegisters(ctx, 0, 1, 9); err == nil {
		t.Error("expected timeout for wrong unit id")
	}
	// Out-of-range address.
	if _, err := c.ReadHoldingRegisters(ctx, 60, 5, 1); err == nil {
		t.Error("expected exception for out-of-range read")
	}
	// Raw frames must meet the minimum ADU size.
	if err := c.SendRaw(ctx, []byte{0x01, 0x03}); err == nil {
		t.Error("expected error for short raw frame")
	}
	if err := c.SendRaw(ctx, []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}); err != nil {
		t.Errorf("SendRaw() error = %v", err)
	}
}
