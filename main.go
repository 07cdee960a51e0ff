// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/JackLamWC/mb-rtu-master/internal/bank"
	"github.com/JackLamWC/mb-rtu-master/internal/bank/persistence"
	"github.com/JackLamWC/mb-rtu-master/internal/config"
	"github.com/JackLamWC/mb-rtu-master/internal/dispatcher"
	"github.com/JackLamWC/mb-rtu-master/internal/eventlog"
	"github.com/JackLamWC/mb-rtu-master/internal/history"
	"github.com/JackLamWC/mb-rtu-master/transport"
	"github.com/JackLamWC/mb-rtu-master/transport/local"
	"github.com/JackLamWC/mb-rtu-master/transport/rtu"
)

func main() {
	settingsFile := pflag.String("settings", "", "Path to the JSON settings file")
	transportType := pflag.String("transport", "rtu", "Transport to use: rtu or local")
	port := pflag.String("port", "", "Serial device, overrides the settings file")
	baudRate := pflag.Int("baud", 0, "Baud rate, overrides the settings file")
	slaveID := pflag.Int("slave", 0, "Default slave ID, overrides the settings file")
	pflag.Parse()

	cfg, err := config.Load(*settingsFile)
	if err != nil {
		fmt.Printf("Failed to load settings: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
		cfg.Serial.Device = *port
	}
	if *baudRate != 0 {
		cfg.BaudRate = *baudRate
		cfg.Serial.BaudRate = *baudRate
	}
	if *slaveID != 0 {
		cfg.SlaveID = *slaveID
	}

	setupLogger(cfg.Log)

	slog.Info("Starting Modbus RTU master", "transport", *transportType)

	var client transport.Transport
	switch *transportType {
	case "rtu":
		if cfg.Serial.Device == "" {
			slog.Error("No serial device configured. Use --port or the settings file.")
			os.Exit(1)
		}
		client = rtu.NewClient(cfg.Serial)
	case "local":
		client = local.NewClient(byte(cfg.SlaveID))
	default:
		slog.Error("Unknown transport type", "type", *transportType)
		os.Exit(1)
	}
	if err := client.Connect(context.Background()); err != nil {
		slog.Error("Failed to connect transport", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	regBank := bank.New()
	storage := openStorage(cfg.Snapshot)
	defer storage.Close()
	if slots, err := storage.Load(); err != nil {
		slog.Warn("Failed to load bank snapshot", "err", err)
	} else {
		regBank.Restore(slots)
	}
	regBank.OnWrite(func(address, quantity int) {
		if err := storage.Save(regBank.Snapshot()); err != nil {
			slog.Warn("Failed to save bank snapshot", "err", err)
		}
	})

	records := history.New()
	bus := eventlog.NewBus(consoleSink(os.Stdout))
	defer bus.Close()

	d := dispatcher.New(client, regBank, records, bus)

	shell := newRepl(d, regBank, records, bus, cfg, *settingsFile)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println()
		slog.Info("Shutting down...")
		client.Close()
		os.Exit(0)
	}()

	shell.run(os.Stdin)
	slog.Info("Goodbye.")
}

func openStorage(cfg config.SnapshotConfig) persistence.Storage {
	switch cfg.Type {
	case "file":
		return persistence.NewFileStorage(cfg.Path)
	case "mmap":
		return persistence.NewMmapStorage(cfg.Path)
	default:
		return persistence.NewMemoryStorage()
	}
}

// consoleSink prints entries the way the log panel always has:
// [HH:MM:SS] LEVEL: message.
func consoleSink(w *os.File) eventlog.Sink {
	return func(e eventlog.Entry) {
		fmt.Fprintf(w, "[%s] %s: %s\n", e.Time.Format("15:04:05"), e.Level, e.Message)
	}
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
