package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to environment overrides, e.g. CAFEDB_DATABASE_PATH
const EnvPrefix = "CAFEDB_"

// FileSettings serves settings from an optional YAML file, with
// environment variables taking precedence. Nested keys are flattened
// with dots, so
//
//	database:
//	  path: cafe.db
//
// is read as "database.path".
type FileSettings struct {
	values map[string]string
}

// LoadFile reads path. An empty path yields settings backed by the environment only.
func LoadFile(path string) (*FileSettings, error) {
	fs := &FileSettings{values: make(map[string]string)}
	if path == "" {
		return fs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	flatten("", raw, fs.values)
	return fs, nil
}

// GetSetting implements SettingsGetter
func (f *FileSettings) GetSetting(key string) (string, error) {
	if val, ok := os.LookupEnv(EnvKey(key)); ok {
		return val, nil
	}
	return f.values[key], nil
}

// Set overrides a value, used for CLI flags
func (f *FileSettings) Set(key, value string) {
	f.values[key] = value
}

// EnvKey maps a dotted key to its environment variable name
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
