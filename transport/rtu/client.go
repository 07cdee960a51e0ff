// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JackLamWC/mb-rtu-master/internal/config"
	"github.com/JackLamWC/mb-rtu-master/modbus"
	rtupacket "github.com/JackLamWC/mb-rtu-master/modbus/rtu"
)

// Client is a Modbus RTU master over a serial line.
type Client struct {
	serialPort

	// Retries is how many times a timed-out request is reissued.
	Retries int
}

// NewClient allocates and initializes an RTU Client.
func NewClient(cfg config.SerialConfig) *Client {
	client := &Client{Retries: cfg.Retries}

	client.serialPort.Config.Address = cfg.Device
	client.serialPort.Config.BaudRate = cfg.BaudRate
	client.serialPort.Config.DataBits = cfg.DataBits
	client.serialPort.Config.StopBits = cfg.StopBits
	client.serialPort.Config.Parity = cfg.Parity
	client.serialPort.Config.Timeout = cfg.Timeout

	client.IdleTimeout = serialIdleTimeout
	return client
}

// ReadHoldingRegisters reads quantity registers starting at address.
func (c *Client) ReadHoldingRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error) {
	return c.readRegisters(ctx, modbus.ReadHoldingRegisters, address, quantity, unitID)
}

// ReadInputRegisters reads quantity input registers starting at address.
func (c *Client) ReadInputRegisters(ctx context.Context, address, quantity uint16, unitID byte) ([]uint16, error) {
	return c.readRegisters(ctx, modbus.ReadInputRegisters, address, quantity, unitID)
}

// ReadCoils reads quantity coils starting at address.
func (c *Client) ReadCoils(ctx context.Context, address, quantity uint16, unitID byte) ([]bool, error) {
	payload, err := c.roundTrip(ctx, rtupacket.Request{
		SlaveID: unitID, Command: modbus.ReadCoils,
		Address: int(address), Quantity: int(quantity),
	})
	if err != nil {
		return nil, err
	}
	data, err := lengthPrefixed(payload)
	if err != nil {
		return nil, &modbus.TransportError{Op: "read coils", Err: err}
	}
	return unpackBits(data, int(quantity)), nil
}

// WriteRegister writes a single register.
func (c *Client) WriteRegister(ctx context.Context, address, value uint16, unitID byte) error {
	_, err := c.roundTrip(ctx, rtupacket.Request{
		SlaveID: unitID, Command: modbus.WriteSingleRegister,
		Address: int(address), Quantity: 1, Registers: []uint16{value},
	})
	return err
}

// WriteRegisters writes multiple registers.
func (c *Client) WriteRegisters(ctx context.Context, address uint16, values []uint16, unitID byte) error {
	_, err := c.roundTrip(ctx, rtupacket.Request{
		SlaveID: unitID, Command: modbus.WriteHoldingRegisters,
		Address: int(address), Quantity: len(values), Registers: values,
	})
	return err
}

// WriteCoils writes multiple coils.
func (c *Client) WriteCoils(ctx context.Context, address uint16, values []bool, unitID byte) error {
	_, err := c.roundTrip(ctx, rtupacket.Request{
		SlaveID: unitID, Command: modbus.WriteCoils,
		Address: int(address), Quantity: len(values), Coils: values,
	})
	return err
}

// SendRaw writes a complete frame to the line without reading a
// response.
func (c *Client) SendRaw(ctx context.Context, frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return &modbus.TransportError{Op: "connect", Err: err}
	}
	c.lastActivity = time.Now()
	c.startCloseTimer()

	slog.Debug("send raw frame", "request", hex.EncodeToString(frame))
	if _, err := c.port.Write(frame); err != nil {
		return &modbus.TransportError{Op: "raw write", Err: err}
	}
	return nil
}

func (c *Client) readRegisters(ctx context.Context, cmd modbus.Command, address, quantity uint16, unitID byte) ([]uint16, error) {
	payload, err := c.roundTrip(ctx, rtupacket.Request{
		SlaveID: unitID, Command: cmd,
		Address: int(address), Quantity: int(quantity),
	})
	if err != nil {
		return nil, err
	}
	data, err := lengthPrefixed(payload)
	if err != nil {
		return nil, &modbus.TransportError{Op: cmd.String(), Err: err}
	}
	if len(data)%2 != 0 {
		return nil, &modbus.TransportError{Op: cmd.String(), Err: fmt.Errorf("odd register payload length %d", len(data))}
	}
	return unpackRegisters(data), nil
}

// roundTrip encodes, transmits and awaits the response for one
// request, reissuing on timeout up to Retries times.
func (c *Client) roundTrip(ctx context.Context, req rtupacket.Request) ([]byte, error) {
	frame, err := rtupacket.EncodeFrame(req)
	if err != nil {
		return nil, err
	}

	var raw []byte
	for attempt := 0; ; attempt++ {
		raw, err = c.send(ctx, frame)
		if err == nil {
			break
		}
		if attempt >= c.Retries || !errors.Is(err, rtupacket.ErrRequestTimedOut) {
			return nil, &modbus.TransportError{Op: req.Command.String(), Err: err}
		}
		slog.Debug("request timed out, retrying", "attempt", attempt+1, "command", req.Command.String())
	}

	resp, err := rtupacket.DecodeResponse(raw)
	if err != nil {
		return nil, &modbus.TransportError{Op: req.Command.String(), Err: err}
	}
	if err := resp.Verify(frame); err != nil {
		return nil, &modbus.TransportError{Op: req.Command.String(), Err: err}
	}
	if err := resp.Exception(); err != nil {
		return nil, &modbus.TransportError{Op: req.Command.String(), Err: err}
	}
	return resp.Pdu.Data, nil
}

func (c *Client) send(ctx context.Context, aduRequest []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	c.lastActivity = time.Now()
	c.startCloseTimer()

	slog.Debug("send to modbus slave", "request", hex.EncodeToString(aduRequest))
	if _, err := c.port.Write(aduRequest); err != nil {
		return nil, err
	}

	bytesToRead := rtupacket.CalculateResponseLength(aduRequest)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.calculateDelay(len(aduRequest) + bytesToRead)):
	}

	data, err := rtupacket.ReadResponse(aduRequest[0], aduRequest[1], c.port, time.Now().Add(c.Config.Timeout))
	if err != nil {
		return nil, err
	}
	slog.Debug("recv from modbus slave", "response", hex.EncodeToString(data))
	return data, nil
}

// calculateDelay calculates the needed delay to separate frames.
func (c *Client) calculateDelay(chars int) time.Duration {
	var characterDelay, frameDelay int

	if c.BaudRate <= 0 || c.BaudRate > 19200 {
		characterDelay = 750
		frameDelay = 1750
	} else {
		characterDelay = 15000000 / c.BaudRate
		frameDelay = 35000000 / c.BaudRate
	}
	return time.Duration(characterDelay*chars+frameDelay) * time.Microsecond
}

// lengthPrefixed strips the byte-count prefix from a read response
// payload.
func lengthPrefixed(payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("short response payload")
	}
	count := int(payload[0])
	if len(payload)-1 < count {
		return nil, fmt.Errorf("response payload shorter than byte count %d", count)
	}
	return payload[1 : 1+count], nil
}

// unpackRegisters decodes big-endian 16-bit values.
func unpackRegisters(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	return out
}

// unpackBits unpacks LSB-first packed coil bytes.
func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			break
		}
		out[i] = data[byteIdx]&(1<<uint(i%8)) != 0
	}
	return out
}
