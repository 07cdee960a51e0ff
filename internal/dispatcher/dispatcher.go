// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package dispatcher serializes command execution: it validates and
// builds the request frame, invokes the transport, and on success
// updates the register bank and appends a history record.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/JackLamWC/mb-rtu-master/internal/bank"
	"github.com/JackLamWC/mb-rtu-master/internal/eventlog"
	"github.com/JackLamWC/mb-rtu-master/internal/history"
	"github.com/JackLamWC/mb-rtu-master/modbus"
	"github.com/JackLamWC/mb-rtu-master/modbus/rtu"
	"github.com/JackLamWC/mb-rtu-master/transport"
)

// Command is one protocol-addressed operation against the bank
// window. Write variants take their values from the bank's staged
// slots.
type Command struct {
	Type    modbus.Command
	SlaveID byte
	Address int
	Length  int
}

// Result reports a completed command.
type Result struct {
	Values         []uint16
	ResponseTimeMs float64
}

// Dispatcher executes one command at a time. It borrows the transport
// and the bank from the owning application context; no two requests
// are ever in flight concurrently.
type Dispatcher struct {
	transport transport.Transport
	bank      *bank.Bank
	history   *history.Log
	log       *eventlog.Bus
}

// New wires a dispatcher to its collaborators.
func New(t transport.Transport, b *bank.Bank, h *history.Log, log *eventlog.Bus) *Dispatcher {
	return &Dispatcher{transport: t, bank: b, history: h, log: log}
}

// Execute runs one command through the full lifecycle:
// validate -> send -> interpret -> record.
//
// Validation failures reject the command before anything reaches the
// transport: no frame is sent, the bank is untouched, and no history
// entry is recorded. Transport failures are logged and surfaced, but
// history records successes only.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (*Result, error) {
	req, values, coils, err := d.stage(cmd)
	if err != nil {
		return nil, err
	}

	frame, err := rtu.EncodeFrame(req)
	if err != nil {
		return nil, err
	}

	d.logRequest(cmd, values, coils)
	d.log.Infof("Modbus Frame: %s", rtu.DescribeFrame(frame))

	timestamp := time.Now()
	start := time.Now()

	readValues, readCoils, err := d.send(ctx, cmd, values, coils)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		d.log.Errorf("Error executing %s: %v", cmd.Type, err)
		d.log.Infof("Actual Response: No response received (timeout or communication error)")
		return nil, err
	}

	result := &Result{ResponseTimeMs: elapsed}
	switch {
	case cmd.Type == modbus.ReadCoils:
		// Coils land in the bank as 0/1 register values.
		if err := d.bank.WriteCoils(cmd.Address, readCoils); err != nil {
			return nil, err
		}
		result.Values = coilValues(readCoils)
	case cmd.Type.IsRead():
		if err := d.bank.Write(cmd.Address, readValues); err != nil {
			return nil, err
		}
		result.Values = readValues
	default:
		// The device accepted the exact values sent; echo them back
		// into the bank and the record. No echo verification against
		// the device is attempted.
		if cmd.Type == modbus.WriteCoils {
			result.Values = coilValues(coils)
		} else {
			result.Values = values
			if err := d.bank.Write(cmd.Address, values); err != nil {
				return nil, err
			}
		}
	}

	end := cmd.Address + cmd.Length - 1
	d.log.Successf("%s %d-%d: %v, Response Time: %.2fms", cmd.Type, cmd.Address, end, result.Values, elapsed)

	d.history.Append(history.Entry{
		Timestamp:      timestamp,
		Command:        fmt.Sprintf("%s %d-%d", cmd.Type, cmd.Address, end),
		Address:        cmd.Address,
		Count:          cmd.Length,
		Values:         result.Values,
		ResponseTimeMs: elapsed,
		Success:        true,
	})
	return result, nil
}

// ExecuteRaw composes and transmits an operator-supplied frame. The
// raw path only confirms the bytes were handed to the transport: no
// response is parsed and the bank is never touched.
func (d *Dispatcher) ExecuteRaw(ctx context.Context, text string) (*Result, error) {
	frame, err := rtu.ComposeRaw(text)
	if err != nil {
		return nil, err
	}

	hexFrame := rtu.FormatFrame(frame)
	d.log.Infof("Sending Raw Command: %s", rtu.DescribeFrame(frame))

	timestamp := time.Now()
	start := time.Now()
	if err := d.transport.SendRaw(ctx, frame); err != nil {
		d.log.Errorf("Raw Command Error: %v", err)
		return nil, err
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	d.log.Successf("Raw Command Sent: %s, Response Time: %.2fms", hexFrame, elapsed)
	d.log.Infof("Note: Raw command sent successfully. Response parsing not implemented for raw commands.")

	d.history.Append(history.Entry{
		Timestamp:      timestamp,
		Command:        fmt.Sprintf("Raw Command: %s", hexFrame),
		RawBytes:       hexFrame,
		ResponseTimeMs: elapsed,
		Success:        true,
	})
	return &Result{ResponseTimeMs: elapsed}, nil
}

// stage gathers write values from the bank and assembles the request.
func (d *Dispatcher) stage(cmd Command) (rtu.Request, []uint16, []bool, error) {
	req := rtu.Request{
		SlaveID:  cmd.SlaveID,
		Command:  cmd.Type,
		Address:  cmd.Address,
		Quantity: cmd.Length,
	}

	var values []uint16
	var coils []bool
	var err error

	switch cmd.Type {
	case modbus.WriteSingleRegister:
		values, err = d.bank.Read(cmd.Address, 1)
		req.Registers = values
	case modbus.WriteHoldingRegisters:
		values, err = d.bank.Read(cmd.Address, cmd.Length)
		req.Registers = values
	case modbus.WriteCoils:
		coils, err = d.bank.Coils(cmd.Address, cmd.Length)
		req.Coils = coils
	}
	if err != nil {
		return rtu.Request{}, nil, nil, err
	}
	return req, values, coils, nil
}

func (d *Dispatcher) logRequest(cmd Command, values []uint16, coils []bool) {
	switch cmd.Type {
	case modbus.WriteSingleRegister:
		d.log.Infof("Sending %s: Address=%d, Value=%04X, Device ID=%d", cmd.Type, cmd.Address, values[0], cmd.SlaveID)
	case modbus.WriteHoldingRegisters:
		d.log.Infof("Sending %s: Start=%d, Values=%v, Device ID=%d", cmd.Type, cmd.Address, hexValues(values), cmd.SlaveID)
	case modbus.WriteCoils:
		d.log.Infof("Sending %s: Start=%d, Values=%v, Device ID=%d", cmd.Type, cmd.Address, coilValues(coils), cmd.SlaveID)
	default:
		d.log.Infof("Sending %s: Start=%d, Count=%d, Device ID=%d", cmd.Type, cmd.Address, cmd.Length, cmd.SlaveID)
	}
}

func (d *Dispatcher) send(ctx context.Context, cmd Command, values []uint16, coils []bool) ([]uint16, []bool, error) {
	addr := uint16(cmd.Address)
	qty := uint16(cmd.Length)

	switch cmd.Type {
	case modbus.ReadHoldingRegisters:
		vs, err := d.transport.ReadHoldingRegisters(ctx, addr, qty, cmd.SlaveID)
		return vs, nil, err
	case modbus.ReadInputRegisters:
		vs, err := d.transport.ReadInputRegisters(ctx, addr, qty, cmd.SlaveID)
		return vs, nil, err
	case modbus.ReadCoils:
		cs, err := d.transport.ReadCoils(ctx, addr, qty, cmd.SlaveID)
		return nil, cs, err
	case modbus.WriteSingleRegister:
		return nil, nil, d.transport.WriteRegister(ctx, addr, values[0], cmd.SlaveID)
	case modbus.WriteHoldingRegisters:
		return nil, nil, d.transport.WriteRegisters(ctx, addr, values, cmd.SlaveID)
	case modbus.WriteCoils:
		return nil, nil, d.transport.WriteCoils(ctx, addr, coils, cmd.SlaveID)
	default:
		return nil, nil, &modbus.InvalidInputError{Address: cmd.Address, Reason: fmt.Sprintf("unsupported command %v", cmd.Type)}
	}
}

func coilValues(coils []bool) []uint16 {
	out := make([]uint16, len(coils))
	for i, on := range coils {
		if on {
			out[i] = 1
		}
	}
	return out
}

func hexValues(values []uint16) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%04X", v)
	}
	return out
}
