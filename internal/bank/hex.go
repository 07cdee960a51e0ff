// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package bank

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// Slot text lifecycle: while a field is being edited the text is only
// sanitized (free-form hex, no prefix, silently truncated past 4
// digits); on commit it is normalized to the canonical 0x-prefixed
// 4-digit uppercase form. Write staging then parses the committed
// form, requiring exactly 4 hex digits.

// hexDigits filters text down to uppercase hex characters, dropping a
// leading 0x/0X prefix first.
func hexDigits(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = strings.TrimPrefix(text, "0X")

	var sb strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeHex normalizes slot text while the operator types. Advisory
// only; it never rejects a keystroke.
func SanitizeHex(text string) string {
	digits := hexDigits(text)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

// NormalizeHex produces the canonical committed form of slot text:
// 0x-prefixed, 4 uppercase hex digits, empty input becoming 0x0000.
func NormalizeHex(text string) string {
	digits := SanitizeHex(text)
	if digits == "" {
		return "0x0000"
	}
	return "0x" + strings.Repeat("0", 4-len(digits)) + digits
}

// FormatHex renders a slot value canonically.
func FormatHex(value uint16) string {
	return fmt.Sprintf("0x%04X", value)
}

// ParseHex converts committed slot text into a register value. The
// committed form must carry exactly 4 hex digits; address is only
// used to name the offending slot in the error.
func ParseHex(address int, text string) (uint16, error) {
	digits := strings.ToUpper(strings.TrimSpace(text))
	digits = strings.TrimPrefix(digits, "0X")

	if len(digits) != 4 {
		return 0, &modbus.InvalidInputError{
			Address: address,
			Reason:  fmt.Sprintf("please enter 4-digit hex value (e.g. 0x1234), got %q", text),
		}
	}
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, &modbus.InvalidInputError{
			Address: address,
			Reason:  fmt.Sprintf("invalid hex value %q, expected 0000-FFFF", text),
		}
	}
	return uint16(v), nil
}
