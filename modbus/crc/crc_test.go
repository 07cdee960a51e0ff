// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

import (
	"testing"
)

func TestCRC(t *testing.T) {
	var crc CRC
	crc.Reset()
	crc.PushBytes([]byte{0x02, 0x07})

	if crc.Value() != 0x1241 {
		t.Fatalf("crc expected %v, actual %v", 0x1241, crc.Value())
	}
}

func TestChecksumWireOrder(t *testing.T) {
	// Canonical request: 01 03 00 00 00 01 -> CRC bytes 84 0A on the wire.
	frame := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}

	var crc CRC
	crc.Reset().PushBytes(frame)
	if crc.Value() != 0x0A84 {
		t.Fatalf("raw crc expected 0x0A84, actual 0x%04X", crc.Value())
	}

	sum := Checksum(frame)
	if sum != 0x840A {
		t.Fatalf("swapped crc expected 0x840A, actual 0x%04X", sum)
	}
	if first, second := byte(sum>>8), byte(sum); first != 0x84 || second != 0x0A {
		t.Fatalf("wire bytes expected 84 0A, actual %02X %02X", first, second)
	}
}

func TestChecksumEmpty(t *testing.T) {
	// Empty input yields the initial value, which swaps to itself.
	if sum := Checksum(nil); sum != 0xFFFF {
		t.Fatalf("empty checksum expected 0xFFFF, actual 0x%04X", sum)
	}
}

func TestPushByteIncremental(t *testing.T) {
	var a, b CRC
	a.Reset().PushBytes([]byte{0x01, 0x03, 0x00})
	b.Reset().PushByte(0x01).PushByte(0x03).PushByte(0x00)
	if a.Value() != b.Value() {
		t.Fatalf("incremental crc mismatch: %04X vs %04X", a.Value(), b.Value())
	}
}
