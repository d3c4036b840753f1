package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/scryer/match"
)

// DefaultConfigFile is read when no configuration file is given.
const DefaultConfigFile = ".scryer.yaml"

// Config holds the settings a configuration file may provide. Command line
// flags override them.
type Config struct {
	Language    string   `yaml:"language" toml:"language"`
	Extensions  []string `yaml:"extensions" toml:"extensions"`
	GrammarDirs []string `yaml:"grammar_dirs,omitempty" toml:"grammar_dirs,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	NoIgnore    bool     `yaml:"no_ignore" toml:"no_ignore"`
	Hidden      bool     `yaml:"hidden" toml:"hidden"`
	MaxSteps    int      `yaml:"max_steps" toml:"max_steps"`
	Strict      bool     `yaml:"strict" toml:"strict"`
}

func DefaultConfig() Config {
	return Config{
		Language:   "erlang",
		Extensions: []string{".erl"},
		MaxSteps:   match.DefaultMaxSteps,
	}
}

// LoadConfig reads a YAML or TOML configuration file, chosen by extension.
// Settings missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	d, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(d))
		decoder.KnownFields(true)
		if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(d), &config)
		if err != nil {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return config, fmt.Errorf("parsing %s: unknown keys %v", path, undecoded)
		}
	default:
		return config, fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
	return config, nil
}

// WriteConfig stores c in the format selected by the extension of path.
func WriteConfig(path string, c Config) error {
	var buf bytes.Buffer
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
