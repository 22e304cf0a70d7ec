package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/org/vaultguard/pkg/models"
)

type vaultFile struct {
	Entries []models.PasswordEntry `json:"entries" yaml:"entries"`
}

// loadEntries reads a vault export. JSON and YAML are accepted, either as a
// bare list of entries or as an object with an "entries" list.
func loadEntries(path string) ([]models.PasswordEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLEntries(data)
	default:
		return decodeJSONEntries(data)
	}
}

func decodeJSONEntries(data []byte) ([]models.PasswordEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []models.PasswordEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing entries: %w", err)
		}
		return entries, nil
	}
	var vf vaultFile
	if err := json.Unmarshal(trimmed, &vf); err != nil {
		return nil, fmt.Errorf("parsing entries: %w", err)
	}
	return vf.Entries, nil
}

func decodeYAMLEntries(data []byte) ([]models.PasswordEntry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing entries: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var entries []models.PasswordEntry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("parsing entries: %w", err)
		}
		return entries, nil
	}
	var vf vaultFile
	if err := node.Decode(&vf); err != nil {
		return nil, fmt.Errorf("parsing entries: %w", err)
	}
	return vf.Entries, nil
}
