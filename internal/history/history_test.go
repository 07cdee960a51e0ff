// Copyright (c) 2026 Jack Lam. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleLog() *Log {
	l := New()
	l.Append(Entry{
		Timestamp:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Command:        "Read Holding Registers 0-1",
		Address:        0,
		Count:          2,
		Values:         []uint16{0x1234, 0xABCD},
		ResponseTimeMs: 12.34,
		Success:        true,
	})
	l.Append(Entry{
		Timestamp:      time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC),
		Command:        "Raw Command: 01 03 00 00 00 01 84 0A",
		RawBytes:       "01 03 00 00 00 01 84 0A",
		ResponseTimeMs: 3.5,
		Success:        true,
	})
	return l
}

func TestAppendOrder(t *testing.T) {
	l := sampleLog()
	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if !entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Error("entries out of execution order")
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Clear() left %d entries", l.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleLog().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][7] != "success" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Read Holding Registers 0-1" || rows[1][2] != "0" || rows[1][3] != "2" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][5] != "01 03 00 00 00 01 84 0A" {
		t.Errorf("raw_bytes column = %q", rows[2][5])
	}
}

func TestWriteJSONFidelity(t *testing.T) {
	l := sampleLog()

	var buf bytes.Buffer
	if err := l.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded []Entry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	want := l.Entries()
	if len(decoded) != len(want) {
		t.Fatalf("decoded %d entries, want %d", len(decoded), len(want))
	}
	for i := range want {
		if decoded[i].Command != want[i].Command ||
			decoded[i].Success != want[i].Success ||
			decoded[i].ResponseTimeMs != want[i].ResponseTimeMs {
			t.Errorf("entry %d mismatch: %+v vs %+v", i, decoded[i], want[i])
		}
	}

	// Raw entry omits values; register entry omits raw_bytes.
	var arr []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &arr); err != nil {
		t.Fatal(err)
	}
	if _, ok := arr[1]["values"]; ok {
		t.Error("raw entry should omit values")
	}
	if _, ok := arr[0]["raw_bytes"]; ok {
		t.Error("register entry should omit raw_bytes")
	}
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	l := sampleLog()

	csvPath := filepath.Join(dir, "history.csv")
	if err := l.ExportCSV(csvPath); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	jsonPath := filepath.Join(dir, "history.json")
	if err := l.ExportJSON(jsonPath); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	// Files match the writer output byte for byte.
	var buf bytes.Buffer
	if err := l.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("exported json differs from writer output")
	}
}
