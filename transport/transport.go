// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import "context"

// Transport is the collaborator that carries Modbus traffic to a
// slave device. The dispatcher owns exactly one Transport and issues
// at most one operation at a time against it.
type Transport interface {
	Connect(ctx context.Context) error
	Close() error

	ReadHoldingRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error)
	ReadInputRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error)
	ReadCoils(ctx context.Context, address, quantity uint16, unitID byte) ([]bool, error)

	WriteRegister(ctx context.Context, address, value uint16, unitID byte) error
	WriteRegisters(ctx context.Context, address uint16, values []uint16, unitID byte) error
	WriteCoils(ctx context.Context, address uint16, values []bool, unitID byte) error

	// SendRaw hands a complete, CRC-terminated frame to the wire for
	// transmission. No response is read or parsed.
	SendRaw(ctx context.Context, frame []byte) error
}
