// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/JackLamWC/mb-rtu-master/modbus"
)

// csvHeader lists the entry field names, one column per field.
var csvHeader = []string{
	"timestamp", "command", "address", "count",
	"values", "raw_bytes", "response_time_ms", "success",
}

// WriteCSV writes the log as CSV: a header row of field names, then
// one row per entry in execution order.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range l.Entries() {
		row := []string{
			e.Timestamp.Format(time.RFC3339Nano),
			e.Command,
			strconv.Itoa(e.Address),
			strconv.Itoa(e.Count),
			fmt.Sprint(e.Values),
			e.RawBytes,
			strconv.FormatFloat(e.ResponseTimeMs, 'f', 2, 64),
			strconv.FormatBool(e.Success),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the log as an indented JSON array of entry objects.
func (l *Log) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Entries())
}

// ExportCSV writes the log to a CSV file. Failures are persistence
// errors: reported, never fatal.
func (l *Log) ExportCSV(path string) error {
	return l.export(path, l.WriteCSV)
}

// ExportJSON writes the log to a JSON file.
func (l *Log) ExportJSON(path string) error {
	return l.export(path, l.WriteJSON)
}

func (l *Log) export(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return &modbus.PersistenceError{Path: path, Err: err}
	}
	if err := write(f); err != nil {
		f.Close()
		return &modbus.PersistenceError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &modbus.PersistenceError{Path: path, Err: err}
	}
	return nil
}
