// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"strconv"
	"strings"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// ComposeRaw parses operator-supplied hex text into a complete RTU
// frame. Input is whitespace-separated 2-hex-digit tokens without a
// CRC; the CRC is always computed and appended here, never validated
// or stripped from the input.
func ComposeRaw(text string) ([]byte, error) {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return nil, modbus.ErrFrameTooShort
	}

	frame := make([]byte, 0, len(tokens)+2)
	for _, tok := range tokens {
		if len(tok) != 2 {
			return nil, &modbus.MalformedByteError{Token: tok}
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, &modbus.MalformedByteError{Token: tok}
		}
		frame = append(frame, byte(v))
	}

	if slaveID := int(frame[0]); slaveID < modbus.SlaveIDMin || slaveID > modbus.SlaveIDMax {
		return nil, &modbus.OutOfRangeError{Field: "slave id", Value: slaveID, Min: modbus.SlaveIDMin, Max: modbus.SlaveIDMax}
	}
	if funcCode := int(frame[1]); funcCode < 1 || funcCode > 127 {
		return nil, &modbus.OutOfRangeError{Field: "function code", Value: funcCode, Min: 1, Max: 127}
	}

	return AppendCRC(frame), nil
}

// SanitizeRaw normalizes raw-command text while the operator types:
// non-hex characters are dropped, the rest is uppercased and regrouped
// into 2-character byte tokens. Advisory formatting only; it never
// rejects input.
func SanitizeRaw(text string) string {
	var hex strings.Builder
	for _, r := range strings.ToUpper(text) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			hex.WriteRune(r)
		}
	}

	chars := hex.String()
	var sb strings.Builder
	for i := 0; i < len(chars); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		end := i + 2
		if end > len(chars) {
			end = len(chars)
		}
		sb.WriteString(chars[i:end])
	}
	return sb.String()
}
