// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

const (
	// MinSize is the smallest valid ADU: slave id, function code, CRC.
	MinSize = 4
	// MaxSize is the largest RTU ADU on the wire.
	MaxSize = 256

	// ExceptionSize is the length of an exception response ADU.
	ExceptionSize = 5

	// ExceptionFlag marks an exception response function code.
	ExceptionFlag = 0x80
)
