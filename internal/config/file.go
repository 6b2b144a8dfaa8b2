package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileSource feeds one key of a parsed config file into a flag.
type FileSource struct {
	data map[string]any
	key  string
}

func (f *FileSource) Lookup() (string, bool) {
	v, ok := f.data[f.key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []any:
		// operator lists may be written as a sequence
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, "|"), true
	default:
		return fmt.Sprint(t), true
	}
}

func (f *FileSource) String() string   { return fmt.Sprintf("config key %q", f.key) }
func (f *FileSource) GoString() string { return fmt.Sprintf("&FileSource{key:%q}", f.key) }

// LoadFile parses a yaml or toml file into a flat key map. The format is
// picked by extension; anything that is not .toml is read as yaml.
func LoadFile(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return data, nil
}
