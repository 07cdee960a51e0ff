// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

// Modbus CRC16: polynomial 0xA001 (reversed 0x8005), initial 0xFFFF.
const (
	initValue  = 0xFFFF
	polynomial = 0xA001
)

// CRC is an incremental Modbus CRC16 accumulator.
type CRC struct {
	value uint16
}

// Reset initializes the accumulator. Must be called before pushing.
func (c *CRC) Reset() *CRC {
	c.value = initValue
	return c
}

// PushByte updates the checksum with one byte.
func (c *CRC) PushByte(b byte) *CRC {
	c.value ^= uint16(b)
	for i := 0; i < 8; i++ {
		if c.value&1 != 0 {
			c.value = (c.value >> 1) ^ polynomial
		} else {
			c.value >>= 1
		}
	}
	return c
}

// PushBytes updates the checksum with a slice of bytes.
func (c *CRC) PushBytes(bs []byte) *CRC {
	for _, b := range bs {
		c.PushByte(b)
	}
	return c
}

// Value returns the raw 16-bit checksum. Its low byte is transmitted
// first on the wire, the high byte second.
func (c *CRC) Value() uint16 {
	return c.value
}

// Checksum computes the CRC16 of data and returns it byte-swapped so
// that big-endian serialization emits the wire order "low byte, then
// high byte".
func Checksum(data []byte) uint16 {
	var c CRC
	v := c.Reset().PushBytes(data).Value()
	return v>>8 | v<<8
}
