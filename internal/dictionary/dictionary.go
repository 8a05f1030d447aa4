// Package dictionary manages the written-form → phonetic-reading mapping
// used to steer mispronunciation-prone speech synthesis.
package dictionary

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a surface form to its hiragana reading.
type Dictionary map[string]string

// Document is the per-novel sidecar file (<novel>.yaml) holding metadata
// and the per-document correction tier.
type Document struct {
	Title        string     `yaml:"title,omitempty"`
	Category     string     `yaml:"category,omitempty"`
	OriginalDate string     `yaml:"original_date,omitempty"`
	Voice        string     `yaml:"voice,omitempty"`
	Corrections  Dictionary `yaml:"corrections"`
}

// LoadDocument reads the per-novel yaml. A missing file is not an error;
// it yields an empty document so a first run starts from the global tier.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Corrections: Dictionary{}}, nil
		}
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Corrections == nil {
		doc.Corrections = Dictionary{}
	}
	return &doc, nil
}

// Save writes the document back. The dictionary is persisted as a whole
// unit per pipeline run; last full write wins.
func (d *Document) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge unions incoming into existing, incoming winning on conflict.
// Neither input is mutated.
func Merge(existing, incoming Dictionary) Dictionary {
	merged := make(Dictionary, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

// Snapshot merges the global tier with the per-document tier, the
// per-document entries taking precedence. The result is the immutable
// dictionary used for the whole pipeline run.
func Snapshot(global Dictionary, doc *Document) Dictionary {
	if doc == nil {
		return Merge(global, nil)
	}
	return Merge(global, doc.Corrections)
}
