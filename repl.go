// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JackLamWC/mb-rtu-master/internal/bank"
	"github.com/JackLamWC/mb-rtu-master/internal/config"
	"github.com/JackLamWC/mb-rtu-master/internal/dispatcher"
	"github.com/JackLamWC/mb-rtu-master/internal/eventlog"
	"github.com/JackLamWC/mb-rtu-master/internal/history"
	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// repl is the line-oriented front end over the dispatcher. Every
// command corresponds to one dispatcher or bank operation; output for
// command results goes through the event log bus so the ordering
// matches what actually happened.
type repl struct {
	dispatcher   *dispatcher.Dispatcher
	bank         *bank.Bank
	history      *history.Log
	log          *eventlog.Bus
	cfg          *config.Config
	settingsFile string
}

func newRepl(d *dispatcher.Dispatcher, b *bank.Bank, h *history.Log, log *eventlog.Bus, cfg *config.Config, settingsFile string) *repl {
	return &repl{
		dispatcher:   d,
		bank:         b,
		history:      h,
		log:          log,
		cfg:          cfg,
		settingsFile: settingsFile,
	}
}

func (r *repl) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Println("Modbus RTU master. Type 'help' for commands, 'quit' to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := r.execute(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func (r *repl) execute(cmd string, args []string) error {
	ctx := context.Background()
	switch cmd {
	case "help":
		r.printHelp()
		return nil
	case "read":
		return r.read(ctx, "read", modbus.ReadHoldingRegisters, args)
	case "readin":
		return r.read(ctx, "readin", modbus.ReadInputRegisters, args)
	case "readcoils":
		return r.read(ctx, "readcoils", modbus.ReadCoils, args)
	case "write":
		return r.write(ctx, modbus.WriteHoldingRegisters, args)
	case "writeone":
		return r.write(ctx, modbus.WriteSingleRegister, args)
	case "writecoils":
		return r.writeCoils(ctx, args)
	case "set":
		return r.set(args)
	case "show":
		r.show()
		return nil
	case "raw":
		_, err := r.dispatcher.ExecuteRaw(ctx, strings.Join(args, " "))
		return err
	case "export":
		return r.export(args)
	case "history":
		r.printHistory()
		return nil
	case "clear":
		r.bank.Clear()
		r.log.Infof("All registers cleared")
		return nil
	case "clear-history":
		r.history.Clear()
		r.log.Infof("Command history cleared")
		return nil
	case "save-settings":
		return r.saveSettings()
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (r *repl) read(ctx context.Context, verb string, t modbus.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <address> <count>", verb)
	}
	address, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid count %q", args[1])
	}
	_, err = r.dispatcher.Execute(ctx, dispatcher.Command{
		Type:    t,
		SlaveID: byte(r.cfg.SlaveID),
		Address: address,
		Length:  count,
	})
	return err
}

// write stages the given hex values into the bank, then transmits the
// staged slots.
func (r *repl) write(ctx context.Context, t modbus.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: write <address> <hex>...")
	}
	if t == modbus.WriteSingleRegister && len(args) != 2 {
		return fmt.Errorf("usage: writeone <address> <hex>")
	}
	address, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	values := make([]uint16, 0, len(args)-1)
	for i, text := range args[1:] {
		v, err := bank.ParseHex(address+i, bank.NormalizeHex(text))
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	if err := r.bank.Write(address, values); err != nil {
		return err
	}
	_, err = r.dispatcher.Execute(ctx, dispatcher.Command{
		Type:    t,
		SlaveID: byte(r.cfg.SlaveID),
		Address: address,
		Length:  len(values),
	})
	return err
}

func (r *repl) writeCoils(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: writecoils <address> <0|1>...")
	}
	address, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	coils := make([]bool, 0, len(args)-1)
	for _, text := range args[1:] {
		switch text {
		case "0":
			coils = append(coils, false)
		case "1":
			coils = append(coils, true)
		default:
			return fmt.Errorf("coil value must be 0 or 1, got %q", text)
		}
	}
	if err := r.bank.WriteCoils(address, coils); err != nil {
		return err
	}
	_, err = r.dispatcher.Execute(ctx, dispatcher.Command{
		Type:    modbus.WriteCoils,
		SlaveID: byte(r.cfg.SlaveID),
		Address: address,
		Length:  len(coils),
	})
	return err
}

// set stages a value in the bank without transmitting anything.
func (r *repl) set(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <address> <hex>")
	}
	address, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	v, err := bank.ParseHex(address, bank.NormalizeHex(args[1]))
	if err != nil {
		return err
	}
	return r.bank.Write(address, []uint16{v})
}

func (r *repl) show() {
	for row := 0; row < modbus.BankSize; row += 8 {
		var b strings.Builder
		for col := 0; col < 8; col++ {
			text, _ := r.bank.Text(row + col)
			fmt.Fprintf(&b, "%2d:%s  ", row+col, text)
		}
		fmt.Println(strings.TrimRight(b.String(), " "))
	}
}

func (r *repl) export(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: export csv|json <path>")
	}
	var err error
	switch args[0] {
	case "csv":
		err = r.history.ExportCSV(args[1])
	case "json":
		err = r.history.ExportJSON(args[1])
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
	if err != nil {
		r.log.Warnf("Export failed: %v", err)
		return err
	}
	r.log.Successf("History exported to %s", args[1])
	return nil
}

func (r *repl) printHistory() {
	entries := r.history.Entries()
	if len(entries) == 0 {
		fmt.Println("No commands recorded.")
		return
	}
	for i, e := range entries {
		fmt.Printf("%3d  %s  %s  %.2fms\n", i+1, e.Timestamp.Format("15:04:05"), e.Command, e.ResponseTimeMs)
	}
}

func (r *repl) saveSettings() error {
	if err := config.Save(r.settingsFile, r.cfg); err != nil {
		r.log.Warnf("Failed to save settings: %v", err)
		return err
	}
	r.log.Successf("Settings saved")
	return nil
}

func (r *repl) printHelp() {
	fmt.Print(`Commands:
  read <addr> <count>        Read holding registers into the bank
  readin <addr> <count>      Read input registers into the bank
  readcoils <addr> <count>   Read coils into the bank as 0/1 values
  write <addr> <hex>...      Write multiple registers from the given values
  writeone <addr> <hex>      Write a single register
  writecoils <addr> <0|1>... Write multiple coils
  set <addr> <hex>           Stage a value in the bank without sending
  show                       Display all 64 register slots
  raw <hex bytes>            Compose and send a raw frame (CRC appended)
  export csv|json <path>     Export the command history
  history                    List recorded commands
  clear                      Reset every slot to 0x0000
  clear-history              Discard recorded commands
  save-settings              Persist current settings to the JSON file
  quit                       Exit
`)
}
