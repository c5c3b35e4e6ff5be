package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func readAuditEntries(t *testing.T, path string) []AuditEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var entries []AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var a *AuditLogger
	a.Log(AuditEntry{Tool: "x"})
	if err := a.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestAuditLogger_Concurrent(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLogger(dir)
	if a == nil {
		t.Fatal("NewAuditLogger returned nil")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Log(AuditEntry{Timestamp: time.Now(), Tool: "hyperscore_graph", Status: "success"})
		}()
	}
	wg.Wait()
	a.Close()

	if got := len(readAuditEntries(t, filepath.Join(dir, "audit.jsonl"))); got != 20 {
		t.Errorf("entries = %d, want 20", got)
	}
}

func TestAuditTool_RecordsCalls(t *testing.T) {
	server, root := setupTestServer(t)

	if _, _, err := server.handleSimulate(context.Background(), nil, SimulateInput{Profile: "Balanced"}); err != nil {
		t.Fatalf("handleSimulate: %v", err)
	}
	server.auditTool(toolGraph, time.Now(), errors.New("boom"), nil)
	server.Close()

	entries := readAuditEntries(t, filepath.Join(root, ".hyperscore", "audit.jsonl"))
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Tool != toolSimulate || entries[0].Status != "success" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Params["profile"] != "Balanced" {
		t.Errorf("profile param = %q, want Balanced", entries[0].Params["profile"])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestSanitizeToolParams(t *testing.T) {
	got := sanitizeToolParams(map[string]any{
		"format":   "dot",
		"scenario": "/home/me/secret/design.yaml",
		"unknown":  "dropped",
		"alpha":    nil,
	})

	if got["format"] != "dot" {
		t.Errorf("format = %q, want dot", got["format"])
	}
	if got["scenario"] != "(set)" {
		t.Errorf("scenario = %q, want (set)", got["scenario"])
	}
	if _, ok := got["unknown"]; ok {
		t.Error("unknown params must not be logged")
	}
	if _, ok := got["alpha"]; ok {
		t.Error("unset params must not be logged")
	}
	if got["_param_count"] != "3" {
		t.Errorf("_param_count = %q, want 3", got["_param_count"])
	}
	if sanitizeToolParams(nil) != nil {
		t.Error("nil params should give nil")
	}
}
