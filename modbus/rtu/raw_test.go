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

func TestComposeRawAppendsCRC(t *testing.T) {
	frame, err := ComposeRaw("01 03 00 00 00 01")
	if err != nil {
		t.Fatalf("ComposeRaw() error = %v", err)
	}
	want := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}
	if !bytes.Equal(frame, want) {
		t.Errorf("ComposeRaw() = % X, want % X", frame, want)
	}
}

func TestComposeRawCaseInsensitive(t *testing.T) {
	upper, err := ComposeRaw("01 0F 00 00 00 08 01 0D")
	if err != nil {
		t.Fatalf("ComposeRaw(upper) error = %v", err)
	}
	lower, err := ComposeRaw("01 0f 00 00 00 08 01 0d")
	if err != nil {
		t.Fatalf("ComposeRaw(lower) error = %v", err)
	}
	if !bytes.Equal(upper, lower) {
		t.Errorf("case-insensitive parse mismatch: % X vs % X", upper, lower)
	}
}

func TestComposeRawRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{"TooShort", "1", func(t *testing.T, err error) {
			if !errors.Is(err, modbus.ErrFrameTooShort) {
				t.Errorf("expected ErrFrameTooShort, got %v", err)
			}
		}},
		{"Empty", "   ", func(t *testing.T, err error) {
			if !errors.Is(err, modbus.ErrFrameTooShort) {
				t.Errorf("expected ErrFrameTooShort, got %v", err)
			}
		}},
		{"MalformedByte", "GG 03", func(t *testing.T, err error) {
			var mb *modbus.MalformedByteError
			if !errors.As(err, &mb) {
				t.Fatalf("expected MalformedByteError, got %v", err)
			}
			if mb.Token != "GG" {
				t.Errorf("offending token = %q, want GG", mb.Token)
			}
		}},
		{"OneDigitToken", "01 3 00", func(t *testing.T, err error) {
			var mb *modbus.MalformedByteError
			if !errors.As(err, &mb) {
				t.Fatalf("expected MalformedByteError, got %v", err)
			}
			if mb.Token != "3" {
				t.Errorf("offending token = %q, want 3", mb.Token)
			}
		}},
		{"ThreeDigitToken", "010 03", func(t *testing.T, err error) {
			var mb *modbus.MalformedByteError
			if !errors.As(err, &mb) {
				t.Fatalf("expected MalformedByteError, got %v", err)
			}
		}},
		{"SlaveIDZero", "00 03 00 00 00 01", func(t *testing.T, err error) {
			var oor *modbus.OutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("expected OutOfRangeError, got %v", err)
			}
			if oor.Field != "slave id" || oor.Value != 0 {
				t.Errorf("got field=%q value=%d", oor.Field, oor.Value)
			}
		}},
		{"SlaveIDTooHigh", "F8 03 00 00 00 01", func(t *testing.T, err error) {
			var oor *modbus.OutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("expected OutOfRangeError, got %v", err)
			}
			if oor.Value != 248 {
				t.Errorf("value = %d, want 248", oor.Value)
			}
		}},
		{"FunctionCodeHighBit", "01 80 00", func(t *testing.T, err error) {
			var oor *modbus.OutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("expected OutOfRangeError, got %v", err)
			}
			if oor.Field != "function code" || oor.Value != 128 {
				t.Errorf("got field=%q value=%d", oor.Field, oor.Value)
			}
		}},
		{"FunctionCodeZero", "01 00 00", func(t *testing.T, err error) {
			var oor *modbus.OutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("expected OutOfRangeError, got %v", err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComposeRaw(tt.input)
			if err == nil {
				t.Fatalf("ComposeRaw(%q) expected error", tt.input)
			}
			tt.check(t, err)
		})
	}
}

func TestSanitizeRaw(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"010300", "01 03 00"},
		{"01 03 00 00 00 06", "01 03 00 00 00 06"},
		{"1 23", "12 3"},
		{"abCDef", "AB CD EF"},
		{"zz", ""},
		{"1", "1"},
		{"123", "12 3"},
	}
	for _, tt := range tests {
		if got := SanitizeRaw(tt.input); got != tt.want {
			t.Errorf("SanitizeRaw(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
