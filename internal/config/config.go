// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the persisted operator settings plus line and logging
// parameters. The settings file is flat JSON with the keys the tool
// has always used: port, baudrate, slave_id, command_type, address,
// count. Serial, log and snapshot sections are optional extras.
type Config struct {
	Port        string `mapstructure:"port"`
	BaudRate    int    `mapstructure:"baudrate"`
	SlaveID     int    `mapstructure:"slave_id"`
	CommandType string `mapstructure:"command_type"`
	Address     int    `mapstructure:"address"`
	Count       int    `mapstructure:"count"`

	Serial   SerialConfig   `mapstructure:"serial"`
	Log      LogConfig      `mapstructure:"log"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// LogConfig defines logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// SerialConfig defines the RTU line settings.
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
}

// SnapshotConfig defines register bank image persistence.
type SnapshotConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"`
}

// DefaultSettingsFile is consulted when no explicit path is given.
const DefaultSettingsFile = "modbus_settings.json"

// Load reads the settings file. A missing file is not an error: the
// defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(DefaultSettingsFile)
	}

	// Defaults mirror the connection dialog's initial state.
	v.SetDefault("port", "")
	v.SetDefault("baudrate", 115200)
	v.SetDefault("slave_id", 1)
	v.SetDefault("command_type", "Read Holding Registers")
	v.SetDefault("address", 0)
	v.SetDefault("count", 1)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.timeout", 5*time.Second)
	v.SetDefault("serial.retries", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("snapshot.type", "memory")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	fixup(&cfg)
	return &cfg, nil
}

func fixup(cfg *Config) {
	cfg.Serial.Parity = strings.ToUpper(cfg.Serial.Parity)
	if cfg.Serial.Device == "" {
		cfg.Serial.Device = cfg.Port
	}
	if cfg.Serial.BaudRate == 0 {
		cfg.Serial.BaudRate = cfg.BaudRate
	}
	if cfg.Serial.Timeout == 0 {
		cfg.Serial.Timeout = 5 * time.Second
	}
}

// Save writes the operator settings back out as flat JSON. Failures
// are reported as warnings by the caller; the tool keeps running.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultSettingsFile
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("port", cfg.Port)
	v.Set("baudrate", cfg.BaudRate)
	v.Set("slave_id", cfg.SlaveID)
	v.Set("command_type", cfg.CommandType)
	v.Set("address", cfg.Address)
	v.Set("count", cfg.Count)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
