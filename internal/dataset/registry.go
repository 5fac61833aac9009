package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// identityKeys are definition keys lifted onto the Snapshot struct itself;
// everything else lands in Metadata.
var identityKeys = map[string]bool{
	"name":        true,
	"description": true,
	"location":    true,
	"owner":       true,
}

// Registry collects the snapshots for one evaluation run. Two datasets may
// not share a name; the collision is reported when the second one is added,
// before anything is evaluated.
type Registry struct {
	byName map[string]*Snapshot
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Snapshot)}
}

// Add registers snap, rejecting duplicate names.
func (r *Registry) Add(snap *Snapshot) error {
	if _, exists := r.byName[snap.Name]; exists {
		return fmt.Errorf("dataset already registered: %s", snap.Name)
	}
	r.byName[snap.Name] = snap
	return nil
}

// List returns the registered snapshots sorted by name.
func (r *Registry) List() []*Snapshot {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Snapshot, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered snapshots.
func (r *Registry) Len() int {
	return len(r.byName)
}

// LoadPath populates the registry from a YAML definition file or CSV
// inventory, or from every *.yaml / *.yml / *.csv file in a directory in
// file-name order.
func (r *Registry) LoadPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("dataset path not found: %w", err)
	}
	if !info.IsDir() {
		return r.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading dataset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}
		if err := r.loadFile(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadFile(path string) error {
	if filepath.Ext(path) == ".csv" {
		return r.AddCSV(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dataset file: %w", err)
	}
	return r.AddDocument(data, path)
}

// AddDocument decodes one YAML document (a single dataset mapping or a list
// of them) and registers every dataset it defines. source is recorded on
// each snapshot for provenance.
func (r *Registry) AddDocument(data []byte, source string) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}

	var payloads []any
	switch v := doc.(type) {
	case nil:
		return nil
	case []any:
		payloads = v
	case map[string]any:
		payloads = []any{v}
	default:
		return fmt.Errorf("invalid dataset definition in %s", source)
	}

	for _, payload := range payloads {
		snap, err := snapshotFromPayload(payload, source)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		if err := r.Add(snap); err != nil {
			return err
		}
	}
	return nil
}

func snapshotFromPayload(payload any, source string) (*Snapshot, error) {
	fields, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dataset entry must be a mapping")
	}

	name := strings.TrimSpace(stringify(fields["name"]))
	if name == "" {
		return nil, fmt.Errorf("dataset entry missing required field: name")
	}

	metadata := make(map[string]any, len(fields))
	for key, value := range fields {
		if identityKeys[key] {
			continue
		}
		metadata[key] = value
	}

	return &Snapshot{
		Name:        name,
		Description: stringify(fields["description"]),
		Location:    stringify(fields["location"]),
		Owner:       stringify(fields["owner"]),
		Metadata:    metadata,
		Source:      source,
	}, nil
}

func isDefinitionFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml" || ext == ".csv"
}
