// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"fmt"

	"github.com/JackLamWC/mb-rtu-master/modbus"
	"github.com/JackLamWC/mb-rtu-master/modbus/crc"
)

// Response is a decoded slave answer.
type Response struct {
	SlaveID byte
	Pdu     modbus.ProtocolDataUnit
}

// DecodeResponse validates the CRC of a raw response ADU and splits it
// into slave id, function code and payload.
func DecodeResponse(raw []byte) (*Response, error) {
	length := len(raw)
	if length < MinSize {
		return nil, fmt.Errorf("modbus: response length '%v' does not meet minimum '%v'", length, MinSize)
	}

	var c crc.CRC
	c.Reset().PushBytes(raw[0 : length-2])
	checksum := uint16(raw[length-1])<<8 | uint16(raw[length-2])
	if checksum != c.Value() {
		return nil, fmt.Errorf("modbus: response crc '%v' does not match expected '%v'", checksum, c.Value())
	}

	return &Response{
		SlaveID: raw[0],
		Pdu: modbus.ProtocolDataUnit{
			FunctionCode: raw[1],
			Data:         raw[2 : length-2],
		},
	}, nil
}

// Exception returns a non-nil error when the response is a device
// exception (function code with the high bit set).
func (r *Response) Exception() error {
	if r.Pdu.FunctionCode&ExceptionFlag == 0 {
		return nil
	}
	code := byte(0)
	if len(r.Pdu.Data) > 0 {
		code = r.Pdu.Data[0]
	}
	return &modbus.ExceptionError{
		FunctionCode:  r.Pdu.FunctionCode &^ ExceptionFlag,
		ExceptionCode: code,
	}
}

// Verify checks that the response matches the request ADU it answers.
func (r *Response) Verify(request []byte) error {
	if len(request) < 2 {
		return fmt.Errorf("modbus: request too short to verify against")
	}
	if r.SlaveID != request[0] {
		return fmt.Errorf("modbus: response slave id '%v' does not match request '%v'", r.SlaveID, request[0])
	}
	if fc := r.Pdu.FunctionCode &^ ExceptionFlag; fc != request[1] {
		return fmt.Errorf("modbus: response function code '%v' does not match request '%v'", fc, request[1])
	}
	return nil
}
