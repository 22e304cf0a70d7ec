package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEntries(t *testing.T) {
	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json list", "vault.json", `[{"id":"1","site":"bank","username":"u","password":"pw1","last_updated":"2026-03-01T00:00:00Z"},{"site":"mail","username":"u","password":"pw2"}]`},
		{"json object", "vault.json", `{"entries":[{"id":"1","site":"bank","username":"u","password":"pw1","last_updated":"2026-03-01T00:00:00Z"},{"site":"mail","username":"u","password":"pw2"}]}`},
		{"yaml list", "vault.yaml", `
- id: "1"
  site: bank
  username: u
  password: pw1
  last_updated: 2026-03-01T00:00:00Z
- site: mail
  username: u
  password: pw2
`},
		{"yaml object", "vault.yml", `
entries:
  - id: "1"
    site: bank
    username: u
    password: pw1
    last_updated: 2026-03-01T00:00:00Z
  - site: mail
    username: u
    password: pw2
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := loadEntries(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("loadEntries: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("got %d entries", len(entries))
			}
			if entries[0].EntryID() != "1" || !entries[0].LastUpdated.Equal(updated) {
				t.Errorf("first entry = %+v", entries[0])
			}
			if entries[1].EntryID() != "mail_u" || !entries[1].LastUpdated.IsZero() {
				t.Errorf("second entry = %+v", entries[1])
			}
		})
	}
}

func TestLoadEntriesErrors(t *testing.T) {
	if _, err := loadEntries(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadEntries(writeFile(t, "bad.json", `{"entries": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := loadEntries(writeFile(t, "bad.yaml", "entries: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSummaryOf(t *testing.T) {
	va := map[string]any{
		"total_entries":  float64(4),
		"security_score": float64(55),
		"risk_label":     "HIGH",
		"weak_entries":   []any{},
		"metrics":        map[string]any{"weak_count": float64(1), "breached_count": float64(1)},
		"priority_actions": []any{
			map[string]any{"message": "Change the MyBank password"},
		},
	}
	got := summaryOf(va)
	if got["security_score"] != float64(55) || got["risk_label"] != "HIGH" {
		t.Errorf("summary = %v", got)
	}
	if _, ok := got["weak_entries"]; ok {
		t.Error("entry lists should not be part of the summary")
	}
	actions := got["priority_actions"].([]any)
	if len(actions) != 1 || actions[0] != "Change the MyBank password" {
		t.Errorf("actions = %v", actions)
	}
}
