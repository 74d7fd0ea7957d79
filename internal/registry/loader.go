package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"predictd/internal/common/fsutil"
	"predictd/pkg/types"
)

// LoadDir scans a directory for model profile files (*.yaml, *.yml,
// *.json, *.toml) and loads each one. Profiles are returned sorted by id
// so listings are stable across runs.
func LoadDir(dir string) ([]types.Profile, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var profiles []types.Profile
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isProfileFile(name) {
			continue
		}
		p := filepath.Join(abs, name)
		prof, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		if prev, dup := seen[prof.ID]; dup {
			return nil, fmt.Errorf("duplicate profile id %q in %s and %s", prof.ID, prev, name)
		}
		seen[prof.ID] = name
		profiles = append(profiles, prof)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

// Load reads a single profile file based on its extension.
func Load(path string) (types.Profile, error) {
	var prof types.Profile
	b, err := os.ReadFile(path)
	if err != nil {
		return prof, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &prof)
	case ".json":
		err = json.Unmarshal(b, &prof)
	case ".toml":
		err = toml.Unmarshal(b, &prof)
	default:
		return prof, fmt.Errorf("unsupported profile extension: %s", ext)
	}
	if err != nil {
		return prof, err
	}
	if strings.TrimSpace(prof.ID) == "" {
		return prof, fmt.Errorf("profile %s: missing id", filepath.Base(path))
	}
	return prof, nil
}

// Default returns the registry used when no profiles directory is
// configured: a single profile for the configured provider.
func Default(id, baseURL string) []types.Profile {
	return []types.Profile{{ID: id, BaseURL: baseURL}}
}

func isProfileFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}
