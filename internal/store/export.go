package store

import (
	"encoding/json"
	"os"
	"time"
)

// Manifest records what was produced from one trajectory file.
type Manifest struct {
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Frames    int         `json:"frames"`
	Atoms     int         `json:"atoms"`
	Symbols   []string    `json:"symbols,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
	Arrays    []ArrayInfo `json:"arrays"`
}

func WriteManifest(path string, m *Manifest) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
